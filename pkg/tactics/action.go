package tactics

import "fmt"

// ActionType identifies what a unit does with one action.
type ActionType string

const (
	EndTurn      ActionType = "end_turn"
	Move         ActionType = "move"
	Shoot        ActionType = "shoot"
	RaiseStance  ActionType = "raise_stance"
	LowerStance  ActionType = "lower_stance"
	UseMedkit    ActionType = "use_medkit"
	Heal         ActionType = "heal"
	ThrowGrenade ActionType = "throw_grenade"
	EatRation    ActionType = "eat_ration"
)

// Targeted reports whether actions of this type carry a target cell.
func (t ActionType) Targeted() bool {
	switch t {
	case Move, Shoot, UseMedkit, Heal, ThrowGrenade:
		return true
	}
	return false
}

// Action is a single unit command. Target is meaningful only for targeted
// action types; heals on oneself target the unit's own cell.
type Action struct {
	Type   ActionType `json:"action"`
	Target Point      `json:"target"`
}

// NewAction builds an untargeted action.
func NewAction(t ActionType) Action { return Action{Type: t} }

// NewTargetAction builds a targeted action.
func NewTargetAction(t ActionType, target Point) Action {
	return Action{Type: t, Target: target}
}

func (a Action) String() string {
	if a.Type.Targeted() {
		return fmt.Sprintf("%s %s", a.Type, a.Target)
	}
	return string(a.Type)
}
