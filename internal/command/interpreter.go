package command

import (
	"regexp"
	"strconv"
	"strings"
)

// Interpreter maps normalized utterances to Intents. It is pure: no I/O, no
// assumptions about which teams currently exist. Rules are checked in a fixed
// order and the first match wins: stop/start keywords, then the score grammar,
// then the reset phrases, then Unrecognized.
type Interpreter struct {
	lex      Lexicon
	scoreRe  *regexp.Regexp
	numberRe *regexp.Regexp
	negative map[string]bool
}

// New compiles an Interpreter from the given lexicon.
func New(lex Lexicon) *Interpreter {
	// ("команда"|"команде"|"команду") <number> <verb> [<amount>]
	scorePattern := "(?:" + alternation(lex.TeamWords) + `)\s+(\d+)\s+(` +
		alternation(lex.Positive) + "|" + alternation(lex.Negative) + `)\s*(\d+)?`

	negative := make(map[string]bool, len(lex.Negative))
	for _, v := range lex.Negative {
		negative[v] = true
	}

	return &Interpreter{
		lex:      lex,
		scoreRe:  regexp.MustCompile(scorePattern),
		numberRe: regexp.MustCompile(`\d+`),
		negative: negative,
	}
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// Interpret parses a raw transcript into an Intent.
func (in *Interpreter) Interpret(utterance string) Intent {
	text := strings.ToLower(strings.TrimSpace(utterance))

	// Control keywords take priority even when the rest of the phrase
	// superficially matches the score grammar.
	if containsAny(text, in.lex.Stop) {
		return Intent{Kind: KindSetListening, Listen: false, Raw: utterance}
	}
	if containsAny(text, in.lex.Start) {
		return Intent{Kind: KindSetListening, Listen: true, Raw: utterance}
	}

	if m := in.scoreRe.FindStringSubmatch(text); m != nil {
		team, err := strconv.Atoi(m[1])
		if err == nil {
			delta := 1
			if m[3] != "" {
				if amount, err := strconv.Atoi(m[3]); err == nil {
					delta = amount
				}
			}
			if in.negative[m[2]] {
				delta = -delta
			}
			return Intent{Kind: KindAdjustScore, Team: team, Delta: delta, Raw: utterance}
		}
	}

	if containsAny(text, in.lex.ResetPhrases) {
		if num := in.numberRe.FindString(text); num != "" {
			if team, err := strconv.Atoi(num); err == nil {
				return Intent{Kind: KindResetScore, Team: team, Raw: utterance}
			}
		}
	}

	return Intent{Kind: KindUnrecognized, Raw: utterance}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
