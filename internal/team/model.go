package team

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table: one team of the owner's current
// generation. Members holds 1-based participant numbers.
type Team struct {
	ID           uuid.UUID
	OwnerID      string
	Name         string
	Members      []int
	Points       int
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Name returns the canonical name for the 1-based team number. Voice commands
// resolve teams by this exact name; there is no fuzzy matching.
func Name(n int) string {
	return fmt.Sprintf("Команда %d", n)
}
