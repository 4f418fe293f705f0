package models

// Question is one multiple-choice item from the question bank.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"prompt"` // may contain HTML (tables, sub/sup)
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`
	IsCalc       bool     `json:"is_calc"`
	DeckID       string   `json:"deck_id,omitempty"`
}
