package moderation

// BanTier maps an offence count to a ban duration. A target whose offence
// count reaches Tier.OffenceCount is banned for at least DurationHours.
type BanTier struct {
	OffenceCount  uint32 `json:"offence_count"`
	DurationHours uint32 `json:"duration_hours"`
}

// Settings is the progressive-duration configuration singleton.
// Tiers are ordered by strictly increasing offence count with
// non-decreasing durations; targets below every tier get MinHours.
type Settings struct {
	MinHours uint32    `json:"min_hours"`
	Tiers    []BanTier `json:"tiers"`
}

// DefaultSettings returns the configuration installed at construction:
// 24h for first offenders, escalating to 3 days, a week and a month.
func DefaultSettings() Settings {
	return Settings{
		MinHours: 24,
		Tiers: []BanTier{
			{OffenceCount: 2, DurationHours: 72},
			{OffenceCount: 3, DurationHours: 168},
			{OffenceCount: 5, DurationHours: 720},
		},
	}
}

// Validate checks the settings invariants.
func (s Settings) Validate() error {
	if s.MinHours == 0 {
		return ErrMinHoursZero
	}
	if len(s.Tiers) == 0 {
		return ErrNoTiers
	}

	for i, tier := range s.Tiers {
		if tier.DurationHours == 0 {
			return ErrZeroDuration
		}
		if i == 0 {
			continue
		}
		if tier.OffenceCount <= s.Tiers[i-1].OffenceCount {
			return ErrTierOffenceOrder
		}
		if tier.DurationHours < s.Tiers[i-1].DurationHours {
			return ErrTierDurationOrder
		}
	}
	return nil
}

// DurationHoursFor resolves the ban duration for a target with the given
// offence count: the highest tier whose offence count is <= offences, or
// MinHours when no tier matches.
func (s Settings) DurationHoursFor(offences uint32) uint32 {
	hours := s.MinHours
	for _, tier := range s.Tiers {
		if tier.OffenceCount > offences {
			break
		}
		hours = tier.DurationHours
	}
	return hours
}

// clone returns a deep copy so callers cannot mutate stored settings.
func (s Settings) clone() Settings {
	tiers := make([]BanTier, len(s.Tiers))
	copy(tiers, s.Tiers)
	return Settings{MinHours: s.MinHours, Tiers: tiers}
}
