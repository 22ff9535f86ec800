package model

// State names as stored on State nodes.
const (
	StateStress         = "Stress"
	StateMoodSwings     = "MoodSwings"
	StateSocialWeakness = "SocialWeakness"
	StateIsolation      = "Isolation"
	StateCopingIssues   = "CopingIssues"
	StateWorkBurnout    = "WorkBurnout"
	StateWellBeing      = "WellBeing"

	// FallbackState is targeted when no attribute signal fires.
	FallbackState = StateWellBeing
)

// KnownStates lists every state name the recommender has wording for.
var KnownStates = []string{
	StateStress,
	StateMoodSwings,
	StateSocialWeakness,
	StateIsolation,
	StateCopingIssues,
	StateWorkBurnout,
	StateWellBeing,
}
