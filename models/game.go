package models

import "time"

type Season struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Game is one match day appearance of a team. Games are immutable once
// created; corrections happen on the per-player records, not here.
type Game struct {
	ID       int       `json:"id" db:"id"`
	TeamID   int       `json:"team_id" db:"team_id"`
	Date     time.Time `json:"date" db:"date"`
	Opponent string    `json:"opponent" db:"opponent"`
	Gameday  int       `json:"gameday" db:"gameday"`
	SeasonID int       `json:"season_id" db:"season_id"`

	Team *Team `json:"team,omitempty" db:"-"`
}
