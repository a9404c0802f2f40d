/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package physics

// Card is a single prompt from a category deck. The set of variants is closed.
type Card interface {
	Category() CategoryID
	View() CardView
}

type SymbolKind string

const (
	KindSymbol SymbolKind = "symbol"
	KindUnit   SymbolKind = "unit"
)

type SymbolCard struct {
	Concept string
	Kind    SymbolKind
	Answer  string
}

type DrawingCard struct {
	Concept string
}

type QuestionCard struct {
	Question string
	Answer   string
}

type TabooCard struct {
	Concept   string
	Forbidden []string
}

func (SymbolCard) Category() CategoryID   { return Symbols }
func (DrawingCard) Category() CategoryID  { return Drawing }
func (QuestionCard) Category() CategoryID { return Questions }
func (TabooCard) Category() CategoryID    { return Taboo }

// CardView is the flattened form of a card sent to clients.
type CardView struct {
	Category  CategoryID `json:"category"`
	Concept   string     `json:"concept,omitempty"`
	Kind      SymbolKind `json:"kind,omitempty"`
	Question  string     `json:"question,omitempty"`
	Answer    string     `json:"answer,omitempty"`
	Forbidden []string   `json:"forbidden,omitempty"`
}

func (c SymbolCard) View() CardView {
	return CardView{Category: Symbols, Concept: c.Concept, Kind: c.Kind, Answer: c.Answer}
}

func (c DrawingCard) View() CardView {
	return CardView{Category: Drawing, Concept: c.Concept}
}

func (c QuestionCard) View() CardView {
	return CardView{Category: Questions, Question: c.Question, Answer: c.Answer}
}

func (c TabooCard) View() CardView {
	forbidden := make([]string, len(c.Forbidden))
	copy(forbidden, c.Forbidden)
	return CardView{Category: Taboo, Concept: c.Concept, Forbidden: forbidden}
}
