package command

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Lexicon holds the keyword sets the interpreter is built from. The defaults
// cover the supported ru-RU grammar; a YAML file may override individual sets.
type Lexicon struct {
	Stop         []string `json:"stop"`
	Start        []string `json:"start"`
	TeamWords    []string `json:"teamWords"`
	Positive     []string `json:"positive"`
	Negative     []string `json:"negative"`
	ResetPhrases []string `json:"resetPhrases"`
}

// DefaultLexicon returns the built-in Russian keyword sets.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Stop:         []string{"стоп", "хватит"},
		Start:        []string{"старт", "начать"},
		TeamWords:    []string{"команда", "команде", "команду"},
		Positive:     []string{"плюс", "+", "дать", "добавить"},
		Negative:     []string{"минус", "-", "убрать", "снять"},
		ResetPhrases: []string{"сбросить очки", "обнулить"},
	}
}

// LoadLexicon reads a lexicon from a YAML file. Sets left empty in the file
// keep their default values.
func LoadLexicon(path string) (Lexicon, error) {
	lex := DefaultLexicon()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("reading lexicon file: %w", err)
	}

	var loaded Lexicon
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return Lexicon{}, fmt.Errorf("parsing lexicon file: %w", err)
	}

	if len(loaded.Stop) > 0 {
		lex.Stop = loaded.Stop
	}
	if len(loaded.Start) > 0 {
		lex.Start = loaded.Start
	}
	if len(loaded.TeamWords) > 0 {
		lex.TeamWords = loaded.TeamWords
	}
	if len(loaded.Positive) > 0 {
		lex.Positive = loaded.Positive
	}
	if len(loaded.Negative) > 0 {
		lex.Negative = loaded.Negative
	}
	if len(loaded.ResetPhrases) > 0 {
		lex.ResetPhrases = loaded.ResetPhrases
	}

	return lex, nil
}
