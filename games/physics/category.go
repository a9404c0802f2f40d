/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

import (
	"errors"
	"fmt"
)

var ErrUnknownCategory = errors.New("unknown category")

// CategoryID identifies one of the four mini-games.
type CategoryID string

const (
	Symbols   CategoryID = "symbols"
	Drawing   CategoryID = "drawing"
	Questions CategoryID = "questions"
	Taboo     CategoryID = "taboo"
)

// Category holds the display metadata for a mini-game.
type Category struct {
	ID          CategoryID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scientist   string     `json:"scientist"`
	Seconds     int        `json:"seconds"`
}

var categories = []Category{
	{
		ID:          Symbols,
		Name:        "Semboller ve Birimler",
		Description: "Fizik büyüklüklerinin sembolleri ve SI birimleri",
		Scientist:   "Newton",
		Seconds:     30,
	},
	{
		ID:          Drawing,
		Name:        "Çizerek Anlatma",
		Description: "Kavramları çizerek anlatma oyunu",
		Scientist:   "Nikola Tesla",
		Seconds:     120,
	},
	{
		ID:          Questions,
		Name:        "Kısa Cevaplı Sorular",
		Description: "Fizik ve Fen Bilimleri kısa cevaplı sorular",
		Scientist:   "Galileo",
		Seconds:     60,
	},
	{
		ID:          Taboo,
		Name:        "Yasaklı Kelimeler",
		Description: "Yasaklı kelimeleri kullanmadan anlatma",
		Scientist:   "Curie",
		Seconds:     60,
	},
}

// Categories returns the mini-games in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (id CategoryID) Valid() bool {
	switch id {
	case Symbols, Drawing, Questions, Taboo:
		return true
	}
	return false
}

// Lookup returns the metadata for id.
func Lookup(id CategoryID) (Category, error) {
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
}

// DefaultSeconds is the round length for a category.
func DefaultSeconds(id CategoryID) int {
	switch id {
	case Drawing:
		return 120
	case Symbols:
		return 30
	default:
		return 60
	}
}
