package bot

// Weights scale each term of the position score. The term set is fixed;
// only the weights are tuned.
type Weights struct {
	TargetDistance   int `json:"target_distance" yaml:"target_distance"`
	AllyCohesion     int `json:"ally_cohesion" yaml:"ally_cohesion"`
	AuraBonus        int `json:"aura_bonus" yaml:"aura_bonus"`
	ExposurePenalty  int `json:"exposure_penalty" yaml:"exposure_penalty"`
	DamageDealt      int `json:"damage_dealt" yaml:"damage_dealt"`
	Kill             int `json:"kill" yaml:"kill"`
	AllyDamage       int `json:"ally_damage" yaml:"ally_damage"`
	ConsumablePickup int `json:"consumable_pickup" yaml:"consumable_pickup"`
}

// DefaultWeights returns the tuned default weights. Exposure dominates the
// positional terms; damage and kills dominate exposure.
func DefaultWeights() Weights {
	return Weights{
		TargetDistance:   5,
		AllyCohesion:     1,
		AuraBonus:        10,
		ExposurePenalty:  100,
		DamageDealt:      30,
		Kill:             500,
		AllyDamage:       40,
		ConsumablePickup: 5,
	}
}
