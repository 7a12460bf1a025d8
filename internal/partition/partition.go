package partition

import (
	"errors"
	"math/rand"
)

// ErrInvalidCount is returned when the participant or team count is below 1.
var ErrInvalidCount = errors.New("participant and team counts must be at least 1")

// Partition assigns participants 1..n to k teams. The assignment is a uniform
// random shuffle of [1..n] sliced into k contiguous runs, so team sizes are
// floor(n/k) or ceil(n/k) and every permutation of members is equally likely.
// When k > n the trailing teams receive empty member lists; that is a valid
// result, not an error.
func Partition(participants, teams int) ([][]int, error) {
	if participants < 1 || teams < 1 {
		return nil, ErrInvalidCount
	}

	members := make([]int, participants)
	for i := range members {
		members[i] = i + 1
	}
	// Fisher-Yates; a comparator-based "random sort" biases the distribution.
	rand.Shuffle(len(members), func(i, j int) {
		members[i], members[j] = members[j], members[i]
	})

	groups := make([][]int, teams)
	for i := 0; i < teams; i++ {
		start := i * participants / teams
		end := (i + 1) * participants / teams
		groups[i] = members[start:end:end]
	}

	return groups, nil
}
