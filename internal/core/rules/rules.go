// Package rules maps self-reported attributes to mental states and finds
// activities by walking the State/Activity graph.
package rules

import (
	"github.com/agenthands/companion/internal/core/model"
)

// StatesForAttributes returns the states signalled by attrs in fixed order:
// stress, mood, social, coping, work. With no signal it returns the
// fallback state. A nil attrs behaves like an empty one.
func StatesForAttributes(attrs *model.Attributes) []string {
	if attrs == nil {
		attrs = &model.Attributes{}
	}

	var states []string
	if attrs.GrowingStress == "Yes" {
		states = append(states, model.StateStress)
	}
	if attrs.MoodSwings == "High" || attrs.MoodSwings == "Medium" {
		states = append(states, model.StateMoodSwings)
	}
	if attrs.SocialWeakness == "Yes" {
		states = append(states, model.StateSocialWeakness)
	}
	if attrs.CopingStruggles == "Yes" {
		states = append(states, model.StateCopingIssues)
	}
	if attrs.WorkInterest == "No" {
		states = append(states, model.StateWorkBurnout)
	}

	if len(states) == 0 {
		return []string{model.FallbackState}
	}
	return states
}
