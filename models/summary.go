package models

import "time"

// Read-only projections backed by SQL views. They join games, game players,
// player penalties and the rule table; the service reloads them after every
// committed edit instead of patching totals in memory.

type SumPerPlayer struct {
	GameID     int       `json:"game_id" db:"game_id"`
	Date       time.Time `json:"date" db:"date"`
	TeamName   string    `json:"team_name" db:"team_name"`
	PlayerID   int       `json:"player_id" db:"player_id"`
	PlayerName string    `json:"player_name" db:"player_name"`
	PenaltySum float64   `json:"penalty_sum" db:"penalty_sum"`
	Full       int       `json:"full" db:"full"`
	Clear      int       `json:"clear" db:"clear"`
	Errors     int       `json:"errors" db:"errors"`
	Played     bool      `json:"played" db:"played"`
}

type SumPerTeam struct {
	TeamName   string  `json:"team_name" db:"team_name"`
	PenaltySum float64 `json:"penalty_sum" db:"penalty_sum"`
}

type SumPerGame struct {
	GameID     int       `json:"game_id" db:"game_id"`
	Date       time.Time `json:"date" db:"date"`
	TeamName   string    `json:"team_name" db:"team_name"`
	PenaltySum float64   `json:"penalty_sum" db:"penalty_sum"`
}

type ResultOfGame struct {
	GameID    int    `json:"game_id" db:"game_id"`
	TeamName  string `json:"team_name" db:"team_name"`
	Opponent  string `json:"opponent" db:"opponent"`
	SumPoints int    `json:"sum_points" db:"sum_points"`
	Full      int    `json:"full" db:"full"`
	Clear     int    `json:"clear" db:"clear"`
	Errors    int    `json:"errors" db:"errors"`
}
