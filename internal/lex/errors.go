package lex

import "fmt"

// Error is a lexical failure at a specific byte offset in the source query.
type Error struct {
	Position int
	Message  string
}

func (e Error) Error() string {
	return fmt.Sprintf("lexical error at byte %d: %s", e.Position, e.Message)
}
