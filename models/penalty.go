package models

// PenaltyKind classifies how a rule is priced: quantity-priced rules multiply
// a unit price by an occurrence count, range-priced rules carry a fixed charge
// bounded by the rule's limits.
type PenaltyKind struct {
	ID          int    `json:"id" db:"id"`
	Description string `json:"description" db:"description"`
	IsRange     bool   `json:"is_range" db:"is_range"`
}

// Penalty is one priced infraction rule from the league's rule table.
type Penalty struct {
	ID               int     `json:"id" db:"id"`
	Description      string  `json:"description" db:"description"`
	KindID           int     `json:"kind_id" db:"kind_id"`
	Penalty          float64 `json:"penalty" db:"penalty"`
	LowerLimit       int     `json:"lower_limit" db:"lower_limit"`
	UpperLimit       int     `json:"upper_limit" db:"upper_limit"`
	GetValueByParent bool    `json:"get_value_by_parent" db:"get_value_by_parent"`
	Active           bool    `json:"active" db:"active"`

	// Populated by the repository join, not stored in the penalties table.
	Kind *PenaltyKind `json:"kind,omitempty" db:"-"`
}
