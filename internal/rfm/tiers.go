package rfm

// TierRule maps a range of quartile scores to a named customer tier.
// Rules are evaluated in order; the first rule whose bounds contain all
// three scores wins. Bounds are inclusive.
type TierRule struct {
	Name string `mapstructure:"name"`
	MinR int    `mapstructure:"min_r"`
	MaxR int    `mapstructure:"max_r"`
	MinF int    `mapstructure:"min_f"`
	MaxF int    `mapstructure:"max_f"`
	MinM int    `mapstructure:"min_m"`
	MaxM int    `mapstructure:"max_m"`
}

// TierFallback is assigned when no rule matches.
const TierFallback = "Other"

// DefaultTierRules returns the standard five-tier boundary table. Tier
// boundaries are a business rule, not a derived quantity; analysts can
// override them in configuration without code changes.
func DefaultTierRules() []TierRule {
	return []TierRule{
		{Name: "Top-Tier", MinR: 4, MaxR: 4, MinF: 4, MaxF: 4, MinM: 4, MaxM: 4},
		{Name: "High-Value", MinR: 3, MaxR: 4, MinF: 3, MaxF: 4, MinM: 3, MaxM: 4},
		{Name: "Mid-Value", MinR: 2, MaxR: 4, MinF: 2, MaxF: 4, MinM: 2, MaxM: 4},
		{Name: "At-Risk", MinR: 1, MaxR: 1, MinF: 1, MaxF: 2, MinM: 1, MaxM: 2},
	}
}

func (r *TierRule) matches(rScore, fScore, mScore int) bool {
	return rScore >= r.MinR && rScore <= r.MaxR &&
		fScore >= r.MinF && fScore <= r.MaxF &&
		mScore >= r.MinM && mScore <= r.MaxM
}

// TierFor resolves the tier name for a score triple against the rules,
// falling back to TierFallback when nothing matches.
func TierFor(rules []TierRule, rScore, fScore, mScore int) string {
	for i := range rules {
		if rules[i].matches(rScore, fScore, mScore) {
			return rules[i].Name
		}
	}
	return TierFallback
}
