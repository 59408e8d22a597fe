package models

import "time"

// BracketStyle соответствует колонке bracket_style в БД.
type BracketStyle string

const (
	BracketStyleBracket    BracketStyle = "bracket"
	BracketStyleScoreboard BracketStyle = "scoreboard"
)

type Tournament struct {
	ID           int          `json:"id" db:"id"`
	Name         string       `json:"name" db:"name"`
	BracketStyle BracketStyle `json:"bracket_style" db:"bracket_style"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// IsBracketEligible reports whether a single elimination bracket may be generated.
func (t *Tournament) IsBracketEligible() bool {
	return t != nil && t.BracketStyle == BracketStyleBracket
}
