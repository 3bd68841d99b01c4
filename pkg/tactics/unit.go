package tactics

import "fmt"

// Stance is a unit's posture.
type Stance string

const (
	Prone    Stance = "prone"
	Kneeling Stance = "kneeling"
	Standing Stance = "standing"
)

// Level returns 0 for prone, 1 for kneeling, 2 for standing, -1 otherwise.
func (s Stance) Level() int {
	switch s {
	case Prone:
		return 0
	case Kneeling:
		return 1
	case Standing:
		return 2
	}
	return -1
}

// Raised returns the next higher stance, or false when already standing.
func (s Stance) Raised() (Stance, bool) {
	switch s {
	case Prone:
		return Kneeling, true
	case Kneeling:
		return Standing, true
	}
	return s, false
}

// Lowered returns the next lower stance, or false when already prone.
func (s Stance) Lowered() (Stance, bool) {
	switch s {
	case Standing:
		return Kneeling, true
	case Kneeling:
		return Prone, true
	}
	return s, false
}

// Role determines a unit's abilities and combat tables.
type Role string

const (
	Commander  Role = "commander"
	FieldMedic Role = "field_medic"
	Soldier    Role = "soldier"
	Sniper     Role = "sniper"
	Scout      Role = "scout"
)

// AllRoles returns the known roles in a stable order.
func AllRoles() []Role {
	return []Role{Commander, FieldMedic, Soldier, Sniper, Scout}
}

// Unit is a combatant on the grid.
type Unit struct {
	ID           int64  `json:"id"`
	PlayerID     int64  `json:"player_id"`
	Teammate     bool   `json:"teammate"`
	Role         Role   `json:"role"`
	Pos          Point  `json:"pos"`
	Stance       Stance `json:"stance"`
	Hitpoints    int    `json:"hitpoints"`
	MaxHitpoints int    `json:"max_hitpoints"`
	ActionPoints int    `json:"action_points"`
	HasMedkit    bool   `json:"has_medkit,omitempty"`
	HasRation    bool   `json:"has_ration,omitempty"`
	HasGrenade   bool   `json:"has_grenade,omitempty"`
}

func (u Unit) String() string {
	return fmt.Sprintf("%s#%d@%s", u.Role, u.ID, u.Pos)
}

// Alive reports whether the unit still has hit points.
func (u Unit) Alive() bool { return u.Hitpoints > 0 }

// MissingHitpoints returns how much the unit can be healed.
func (u Unit) MissingHitpoints() int {
	if m := u.MaxHitpoints - u.Hitpoints; m > 0 {
		return m
	}
	return 0
}

// Holds reports whether the unit carries a consumable of the given kind.
func (u Unit) Holds(kind BonusKind) bool {
	switch kind {
	case Medkit:
		return u.HasMedkit
	case Ration:
		return u.HasRation
	case Grenade:
		return u.HasGrenade
	}
	return false
}

// SetHolding sets the holding flag for kind.
func (u *Unit) SetHolding(kind BonusKind, v bool) {
	switch kind {
	case Medkit:
		u.HasMedkit = v
	case Ration:
		u.HasRation = v
	case Grenade:
		u.HasGrenade = v
	}
}

// BonusKind is the type of a pickup item.
type BonusKind string

const (
	Medkit  BonusKind = "medkit"
	Ration  BonusKind = "ration"
	Grenade BonusKind = "grenade"
)

// Bonus is a pickup lying on the grid.
type Bonus struct {
	Kind BonusKind `json:"kind"`
	Pos  Point     `json:"pos"`
}
