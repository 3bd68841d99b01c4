package tactics

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid game parameters")

// RoleParams holds the per-role combat table.
type RoleParams struct {
	InitialActionPoints int     `json:"initial_action_points" yaml:"initial_action_points"`
	MaxHitpoints        int     `json:"max_hitpoints" yaml:"max_hitpoints"`
	ShootCost           int     `json:"shoot_cost" yaml:"shoot_cost"`
	ShootingRange       float64 `json:"shooting_range" yaml:"shooting_range"`
	VisionRange         float64 `json:"vision_range" yaml:"vision_range"`
	ProneDamage         int     `json:"prone_damage" yaml:"prone_damage"`
	KneelingDamage      int     `json:"kneeling_damage" yaml:"kneeling_damage"`
	StandingDamage      int     `json:"standing_damage" yaml:"standing_damage"`
}

// Damage returns the shot damage dealt from the given stance.
func (r RoleParams) Damage(s Stance) int {
	switch s {
	case Prone:
		return r.ProneDamage
	case Kneeling:
		return r.KneelingDamage
	default:
		return r.StandingDamage
	}
}

// Params are the immutable per-match game constants.
type Params struct {
	StandingMoveCost int `json:"standing_move_cost" yaml:"standing_move_cost"`
	KneelingMoveCost int `json:"kneeling_move_cost" yaml:"kneeling_move_cost"`
	ProneMoveCost    int `json:"prone_move_cost" yaml:"prone_move_cost"`
	StanceChangeCost int `json:"stance_change_cost" yaml:"stance_change_cost"`

	MedkitUseCost                int `json:"medkit_use_cost" yaml:"medkit_use_cost"`
	MedkitBonusHitpoints         int `json:"medkit_bonus_hitpoints" yaml:"medkit_bonus_hitpoints"`
	MedkitHealSelfBonusHitpoints int `json:"medkit_heal_self_bonus_hitpoints" yaml:"medkit_heal_self_bonus_hitpoints"`

	FieldMedicHealCost               int `json:"field_medic_heal_cost" yaml:"field_medic_heal_cost"`
	FieldMedicHealBonusHitpoints     int `json:"field_medic_heal_bonus_hitpoints" yaml:"field_medic_heal_bonus_hitpoints"`
	FieldMedicHealSelfBonusHitpoints int `json:"field_medic_heal_self_bonus_hitpoints" yaml:"field_medic_heal_self_bonus_hitpoints"`

	GrenadeThrowCost        int     `json:"grenade_throw_cost" yaml:"grenade_throw_cost"`
	GrenadeThrowRange       float64 `json:"grenade_throw_range" yaml:"grenade_throw_range"`
	GrenadeDirectDamage     int     `json:"grenade_direct_damage" yaml:"grenade_direct_damage"`
	GrenadeCollateralDamage int     `json:"grenade_collateral_damage" yaml:"grenade_collateral_damage"`

	FieldRationEatCost           int `json:"field_ration_eat_cost" yaml:"field_ration_eat_cost"`
	FieldRationBonusActionPoints int `json:"field_ration_bonus_action_points" yaml:"field_ration_bonus_action_points"`

	CommanderAuraRange             float64 `json:"commander_aura_range" yaml:"commander_aura_range"`
	CommanderAuraBonusActionPoints int     `json:"commander_aura_bonus_action_points" yaml:"commander_aura_bonus_action_points"`

	Roles map[Role]RoleParams `json:"roles" yaml:"roles"`
}

// DefaultParams returns the standard match constants.
func DefaultParams() *Params {
	return &Params{
		StandingMoveCost: 2,
		KneelingMoveCost: 4,
		ProneMoveCost:    6,
		StanceChangeCost: 2,

		MedkitUseCost:                2,
		MedkitBonusHitpoints:         50,
		MedkitHealSelfBonusHitpoints: 30,

		FieldMedicHealCost:               1,
		FieldMedicHealBonusHitpoints:     5,
		FieldMedicHealSelfBonusHitpoints: 3,

		GrenadeThrowCost:        8,
		GrenadeThrowRange:       5,
		GrenadeDirectDamage:     80,
		GrenadeCollateralDamage: 60,

		FieldRationEatCost:           2,
		FieldRationBonusActionPoints: 5,

		CommanderAuraRange:             5,
		CommanderAuraBonusActionPoints: 2,

		Roles: map[Role]RoleParams{
			Commander:  {InitialActionPoints: 10, MaxHitpoints: 100, ShootCost: 3, ShootingRange: 7, VisionRange: 8, ProneDamage: 25, KneelingDamage: 20, StandingDamage: 15},
			FieldMedic: {InitialActionPoints: 10, MaxHitpoints: 100, ShootCost: 2, ShootingRange: 5, VisionRange: 7, ProneDamage: 15, KneelingDamage: 12, StandingDamage: 9},
			Soldier:    {InitialActionPoints: 10, MaxHitpoints: 120, ShootCost: 4, ShootingRange: 8, VisionRange: 7, ProneDamage: 35, KneelingDamage: 30, StandingDamage: 25},
			Sniper:     {InitialActionPoints: 10, MaxHitpoints: 100, ShootCost: 9, ShootingRange: 10, VisionRange: 7, ProneDamage: 95, KneelingDamage: 80, StandingDamage: 65},
			Scout:      {InitialActionPoints: 12, MaxHitpoints: 100, ShootCost: 4, ShootingRange: 6, VisionRange: 9, ProneDamage: 30, KneelingDamage: 25, StandingDamage: 20},
		},
	}
}

// MoveCost returns the action-point cost of one step from the given stance.
func (p *Params) MoveCost(s Stance) int {
	switch s {
	case Prone:
		return p.ProneMoveCost
	case Kneeling:
		return p.KneelingMoveCost
	default:
		return p.StandingMoveCost
	}
}

// Role returns the combat table for r. Unknown roles get a zero table.
func (p *Params) Role(r Role) RoleParams {
	return p.Roles[r]
}

// Validate checks that every action cost is positive so that any sequence of
// actions strictly consumes action points.
func (p *Params) Validate() error {
	costs := []struct {
		name string
		v    int
	}{
		{"standing_move_cost", p.StandingMoveCost},
		{"kneeling_move_cost", p.KneelingMoveCost},
		{"prone_move_cost", p.ProneMoveCost},
		{"stance_change_cost", p.StanceChangeCost},
		{"medkit_use_cost", p.MedkitUseCost},
		{"field_medic_heal_cost", p.FieldMedicHealCost},
		{"grenade_throw_cost", p.GrenadeThrowCost},
		{"field_ration_eat_cost", p.FieldRationEatCost},
	}
	for _, c := range costs {
		if c.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidParams, c.name, c.v)
		}
	}
	if p.FieldRationBonusActionPoints < 0 {
		return fmt.Errorf("%w: field_ration_bonus_action_points is negative", ErrInvalidParams)
	}
	for role, rp := range p.Roles {
		if rp.ShootCost <= 0 {
			return fmt.Errorf("%w: role %s shoot_cost must be positive", ErrInvalidParams, role)
		}
		if rp.MaxHitpoints <= 0 {
			return fmt.Errorf("%w: role %s max_hitpoints must be positive", ErrInvalidParams, role)
		}
	}
	return nil
}
