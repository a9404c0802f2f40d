/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

//go:embed decks.yaml
var defaultDecks []byte

// DeckProvider supplies the ordered cards of each category.
type DeckProvider interface {
	Deck(id CategoryID) []Card
}

// Decks is a static DeckProvider loaded from YAML.
type Decks map[CategoryID][]Card

func (d Decks) Deck(id CategoryID) []Card {
	return d[id]
}

// Counts reports the number of cards per category.
func (d Decks) Counts() map[CategoryID]int {
	counts := make(map[CategoryID]int, len(categories))
	for _, c := range categories {
		counts[c.ID] = len(d[c.ID])
	}
	return counts
}

type deckFile struct {
	Symbols []struct {
		Concept string `yaml:"concept"`
		Kind    string `yaml:"kind"`
		Answer  string `yaml:"answer"`
	} `yaml:"symbols"`
	Drawing []struct {
		Concept string `yaml:"concept"`
	} `yaml:"drawing"`
	Questions []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"questions"`
	Taboo []struct {
		Concept   string   `yaml:"concept"`
		Forbidden []string `yaml:"forbidden"`
	} `yaml:"taboo"`
}

// DefaultDecks returns the embedded deck.
func DefaultDecks() Decks {
	d, err := ParseDecks(bytes.NewReader(defaultDecks))
	if err != nil {
		panic("embedded deck is invalid: " + err.Error())
	}
	return d
}

// LoadDecks reads a deck file from disk.
func LoadDecks(path string) (Decks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deck file: %w", err)
	}
	defer f.Close()

	return ParseDecks(f)
}

// ParseDecks decodes a YAML deck. Missing categories get an empty deck.
func ParseDecks(r io.Reader) (Decks, error) {
	var file deckFile

	err := yaml.NewDecoder(r).Decode(&file)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding deck: %w", err)
	}

	d := Decks{
		Symbols:   make([]Card, 0, len(file.Symbols)),
		Drawing:   make([]Card, 0, len(file.Drawing)),
		Questions: make([]Card, 0, len(file.Questions)),
		Taboo:     make([]Card, 0, len(file.Taboo)),
	}

	for i, c := range file.Symbols {
		kind := SymbolKind(c.Kind)
		if kind != KindSymbol && kind != KindUnit {
			return nil, fmt.Errorf("symbols[%d]: invalid kind %q", i, c.Kind)
		}
		d[Symbols] = append(d[Symbols], SymbolCard{Concept: c.Concept, Kind: kind, Answer: c.Answer})
	}

	for _, c := range file.Drawing {
		d[Drawing] = append(d[Drawing], DrawingCard{Concept: c.Concept})
	}

	for _, c := range file.Questions {
		d[Questions] = append(d[Questions], QuestionCard{Question: c.Question, Answer: c.Answer})
	}

	for _, c := range file.Taboo {
		d[Taboo] = append(d[Taboo], TabooCard{Concept: c.Concept, Forbidden: c.Forbidden})
	}

	return d, nil
}
