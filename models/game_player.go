package models

// PlayerPenalty is the occurrence count of one rule for one game player.
// One row exists per (game player, rule) pair, created zero-valued together
// with the game player record.
type PlayerPenalty struct {
	ID           int `json:"id" db:"id"`
	GamePlayerID int `json:"game_player_id" db:"game_player_id"`
	PenaltyID    int `json:"penalty_id" db:"penalty_id"`
	Value        int `json:"value" db:"value"`

	// Populated by the repository join together with its kind.
	Penalty *Penalty `json:"penalty,omitempty" db:"-"`
}

// GamePlayer is one player's recorded participation in one game. The full and
// clear pin counts and the errors count are stored denormalized here; the
// errors count is mirrored by the one PlayerPenalty row whose rule has
// GetValueByParent set. The monetary penalty total is always derived from the
// PlayerPenalty rows, never stored.
type GamePlayer struct {
	ID        int     `json:"id" db:"id"`
	GameID    int     `json:"game_id" db:"game_id"`
	PlayerID  int     `json:"player_id" db:"player_id"`
	Paid      float64 `json:"paid" db:"paid"`
	SumPoints int     `json:"sum_points" db:"sum_points"`
	Full      int     `json:"full" db:"full"`
	Clear     int     `json:"clear" db:"clear"`
	Errors    int     `json:"errors" db:"errors"`
	Played    bool    `json:"played" db:"played"`

	Player    *Player          `json:"player,omitempty" db:"-"`
	Penalties []*PlayerPenalty `json:"penalties,omitempty" db:"-"`
}

// Total is the displayed pin total. It is not stored separately.
func (gp *GamePlayer) Total() int {
	return gp.Full + gp.Clear
}
