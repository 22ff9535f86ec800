// Package explain turns the graph path behind a recommendation into a
// short human-readable sentence.
package explain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/metrics"
)

// StateKind is the closed set of mental states the explainer has wording for.
type StateKind int

const (
	StateUnrecognized StateKind = iota
	StateStress
	StateMoodSwings
	StateSocialWeakness
	StateIsolation
	StateCopingIssues
	StateWorkBurnout
	StateWellBeing
)

var stateNames = map[string]StateKind{
	model.StateStress:         StateStress,
	model.StateMoodSwings:     StateMoodSwings,
	model.StateSocialWeakness: StateSocialWeakness,
	model.StateIsolation:      StateIsolation,
	model.StateCopingIssues:   StateCopingIssues,
	model.StateWorkBurnout:    StateWorkBurnout,
	model.StateWellBeing:      StateWellBeing,
}

func ParseStateKind(name string) StateKind {
	return stateNames[name]
}

var stateTemplates = map[StateKind]string{
	StateStress:         "Recommended because you indicated signs of growing stress.",
	StateMoodSwings:     "Suggested to help manage mood fluctuations.",
	StateSocialWeakness: "Designed to help build social confidence.",
	StateIsolation:      "Encourages outdoor interaction to combat isolation.",
	StateCopingIssues:   "Tools to build resilience and coping mechanisms.",
	StateWorkBurnout:    "Support for workplace engagement and burnout.",
	StateWellBeing:      "Great for general mental maintenance.",
}

const (
	unrecognizedTemplate = "Relevant to your condition: %s."
	noPathText           = "Recommended based on your profile."
)

// Template returns the fixed sentence for a known state kind.
func (k StateKind) Template() (string, bool) {
	s, ok := stateTemplates[k]
	return s, ok
}

// ErrUnrecognizedState is returned in strict mode when the store holds a
// state the explainer has no wording for.
var ErrUnrecognizedState = errors.New("unrecognized state")

type Explainer struct {
	Driver driver.GraphDriver
	Strict bool

	logger zerolog.Logger
}

func NewExplainer(d driver.GraphDriver, strict bool, logger zerolog.Logger) *Explainer {
	return &Explainer{Driver: d, Strict: strict, logger: logger}
}

// Explain finds the state linking the user to the activity and renders its
// template. When several states connect them the first row wins.
func (e *Explainer) Explain(ctx context.Context, activityID, userID string) (string, error) {
	start := time.Now()
	res, err := e.Driver.ExecuteQuery(ctx, driver.ConnectingStatesQuery, map[string]interface{}{
		"uid": userID,
		"aid": activityID,
	})
	metrics.ObserveGraphQuery("connecting_states", start, err)
	if err != nil {
		return "", fmt.Errorf("fetching connecting states for %s/%s: %w", userID, activityID, err)
	}

	if len(res.Records) == 0 {
		return noPathText, nil
	}

	var state string
	if v, ok := res.Records[0].Get("state"); ok && v != nil {
		state = fmt.Sprint(v)
	}
	if len(res.Records) > 1 {
		e.logger.Debug().Str("activity_id", activityID).Int("states", len(res.Records)).
			Str("chosen", state).Msg("multiple connecting states")
	}

	if text, ok := ParseStateKind(state).Template(); ok {
		return text, nil
	}
	if e.Strict {
		return "", fmt.Errorf("%w: %q", ErrUnrecognizedState, state)
	}
	e.logger.Warn().Str("state", state).Str("activity_id", activityID).Msg("no template for state")
	return fmt.Sprintf(unrecognizedTemplate, state), nil
}

var reasonTexts = map[string]string{
	model.StateStress:         "Helps reduce reported stress.",
	model.StateMoodSwings:     "Helps manage mood swings.",
	model.StateSocialWeakness: "Builds social confidence.",
	model.StateWellBeing:      "Great for general mental maintenance.",
	model.StateCopingIssues:   "Tools to build resilience.",
	model.StateWorkBurnout:    "Support for work engagement.",
	model.ReasonAIMatch:       "This activity is popular among users with similar profiles to you.",
}

// ForReason explains a candidate from its reason category alone, for
// requests that carry attributes instead of a known user.
func ForReason(reason string) string {
	if s, ok := reasonTexts[reason]; ok {
		return s
	}
	return "Recommended based on your current inputs."
}
