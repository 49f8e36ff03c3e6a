package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownEnergyTier = errors.New("model: unknown energy tier")

type EnergyTier string

const (
	EnergyLow    EnergyTier = "low"
	EnergyMedium EnergyTier = "medium"
	EnergyHigh   EnergyTier = "high"
)

// EnergyTiers is ordered from least to most demanding; the index doubles as the learner's action id.
var EnergyTiers = []EnergyTier{EnergyLow, EnergyMedium, EnergyHigh}

const (
	lowTierMaxMinutes    = 30
	mediumTierMaxMinutes = 90
)

func (e EnergyTier) IsValid() bool {
	return e.Index() >= 0
}

func (e EnergyTier) Index() int {
	switch e {
	case EnergyLow:
		return 0
	case EnergyMedium:
		return 1
	case EnergyHigh:
		return 2
	default:
		return -1
	}
}

// Minutes is the preferred task length associated with a tier.
func (e EnergyTier) Minutes() int {
	switch e {
	case EnergyLow:
		return 30
	case EnergyMedium:
		return 60
	default:
		return 120
	}
}

func ParseEnergyTier(raw string) (EnergyTier, error) {
	tier := EnergyTier(strings.ToLower(strings.TrimSpace(raw)))
	if !tier.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownEnergyTier, raw)
	}
	return tier, nil
}

// TierFor classifies a task by its estimate.
func TierFor(estimatedMinutes int) EnergyTier {
	switch {
	case estimatedMinutes <= lowTierMaxMinutes:
		return EnergyLow
	case estimatedMinutes <= mediumTierMaxMinutes:
		return EnergyMedium
	default:
		return EnergyHigh
	}
}
