package model

import (
	"errors"
	"fmt"
	"strings"
)

// Attributes are the self-reported signals of a user without history.
// Values use the survey spellings: "Yes"/"No", and "High"/"Medium"/"Low"
// for mood swings.
type Attributes struct {
	GrowingStress   string `json:"growing_stress,omitempty"`
	MoodSwings      string `json:"mood_swings,omitempty"`
	SocialWeakness  string `json:"social_weakness,omitempty"`
	CopingStruggles string `json:"coping_struggles,omitempty"`
	WorkInterest    string `json:"work_interest,omitempty"`
}

type Strategy string

const (
	StrategyGraph  Strategy = "graph"
	StrategyNeural Strategy = "neural"
	StrategyHybrid Strategy = "hybrid"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// ParseStrategy accepts the three strategy names case-insensitively. The
// empty string means hybrid.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyHybrid:
		return StrategyHybrid, nil
	case StrategyGraph:
		return StrategyGraph, nil
	case StrategyNeural:
		return StrategyNeural, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}
