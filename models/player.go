package models

type Player struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// DefaultTeamPlayer is a roster entry: the player's regular team assignment,
// used to pre-fill game lineups.
type DefaultTeamPlayer struct {
	ID       int `json:"id" db:"id"`
	PlayerID int `json:"player_id" db:"player_id"`
	TeamID   int `json:"team_id" db:"team_id"`

	Player *Player `json:"player,omitempty" db:"-"`
}
