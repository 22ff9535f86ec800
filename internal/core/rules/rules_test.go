package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/companion/internal/core/model"
)

func TestStatesForAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs *model.Attributes
		want  []string
	}{
		{"nil attributes", nil, []string{"WellBeing"}},
		{"no signal", &model.Attributes{GrowingStress: "No", MoodSwings: "Low", WorkInterest: "Yes"}, []string{"WellBeing"}},
		{"stress", &model.Attributes{GrowingStress: "Yes"}, []string{"Stress"}},
		{"stress maybe", &model.Attributes{GrowingStress: "Maybe"}, []string{"WellBeing"}},
		{"mood high", &model.Attributes{MoodSwings: "High"}, []string{"MoodSwings"}},
		{"mood medium", &model.Attributes{MoodSwings: "Medium"}, []string{"MoodSwings"}},
		{"mood low", &model.Attributes{MoodSwings: "Low"}, []string{"WellBeing"}},
		{"social", &model.Attributes{SocialWeakness: "Yes"}, []string{"SocialWeakness"}},
		{"coping", &model.Attributes{CopingStruggles: "Yes"}, []string{"CopingIssues"}},
		{"work no", &model.Attributes{WorkInterest: "No"}, []string{"WorkBurnout"}},
		{"work maybe", &model.Attributes{WorkInterest: "Maybe"}, []string{"WellBeing"}},
		{"case sensitive", &model.Attributes{GrowingStress: "yes"}, []string{"WellBeing"}},
		{
			"all signals keep order",
			&model.Attributes{WorkInterest: "No", CopingStruggles: "Yes", SocialWeakness: "Yes", MoodSwings: "High", GrowingStress: "Yes"},
			[]string{"Stress", "MoodSwings", "SocialWeakness", "CopingIssues", "WorkBurnout"},
		},
		{"stress and work", &model.Attributes{GrowingStress: "Yes", WorkInterest: "No"}, []string{"Stress", "WorkBurnout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatesForAttributes(tt.attrs))
		})
	}
}

func TestStatesForAttributes_OnlyKnownStates(t *testing.T) {
	all := &model.Attributes{GrowingStress: "Yes", MoodSwings: "Medium", SocialWeakness: "Yes", CopingStruggles: "Yes", WorkInterest: "No"}
	for _, attrs := range []*model.Attributes{nil, all} {
		for _, state := range StatesForAttributes(attrs) {
			assert.Contains(t, model.KnownStates, state)
		}
	}
}
