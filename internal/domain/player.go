package domain

import "time"

// Player is a canonical roster identity. RefID is the identifier the
// external stats provider understands.
type Player struct {
	RefID  int64
	Name   string
	Active bool
}

// PlayerAlias maps an OCR-mangled or shorthand name to a canonical player.
// Aliases are append-only so corrections made during review stay auditable.
type PlayerAlias struct {
	Alias   string
	RefID   int64
	Source  string // "seed" or "review"
	AddedAt time.Time
}
