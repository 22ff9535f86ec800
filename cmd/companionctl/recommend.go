package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/companion/internal/core"
	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/core/rules"
)

var (
	recUserID   string
	recStrategy string
	recLimit    int
	recAttrs    model.Attributes
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run the recommender from the terminal",
	Long: `Recommends activities for a known user, or for an anonymous profile
described by attribute flags.

Examples:
  companionctl recommend --user U123
  companionctl recommend --growing-stress Yes --mood-swings High --strategy graph`,
	RunE: runRecommend,
}

var explainCmd = &cobra.Command{
	Use:   "explain <activity-id> <user-id>",
	Short: "Explain why an activity suits a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runExplain,
}

func init() {
	f := recommendCmd.Flags()
	f.StringVarP(&recUserID, "user", "u", "", "known user id")
	f.StringVarP(&recStrategy, "strategy", "s", "", "graph, neural or hybrid (default from config)")
	f.IntVarP(&recLimit, "limit", "n", 0, "number of recommendations (default from config)")
	f.StringVar(&recAttrs.GrowingStress, "growing-stress", "", "Yes, No or Maybe")
	f.StringVar(&recAttrs.MoodSwings, "mood-swings", "", "High, Medium or Low")
	f.StringVar(&recAttrs.SocialWeakness, "social-weakness", "", "Yes, No or Maybe")
	f.StringVar(&recAttrs.CopingStruggles, "coping-struggles", "", "Yes or No")
	f.StringVar(&recAttrs.WorkInterest, "work-interest", "", "Yes, No or Maybe")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var strategy model.Strategy
	if recStrategy != "" {
		s, err := model.ParseStrategy(recStrategy)
		if err != nil {
			return err
		}
		strategy = s
	}

	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	a.LoadEmbeddings()

	req := core.Request{UserID: recUserID, Limit: recLimit, Strategy: strategy}
	if recUserID == "" {
		req.Attributes = &recAttrs
		printf(cmd, "Target states: %v\n", rules.StatesForAttributes(&recAttrs))
	}

	candidates, err := a.Recommender.GetRecommendations(ctx, req)
	if err != nil {
		return err
	}
	recs, err := a.Recommender.Annotate(ctx, recUserID, candidates)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, recs)
	}
	if len(recs) == 0 {
		printf(cmd, "No recommendations\n")
		return nil
	}
	for i, r := range recs {
		score := ""
		if r.Score != nil {
			score = fmt.Sprintf(" score=%.3f", *r.Score)
		}
		printf(cmd, "%d. %s [%s] (%s)%s\n   %s\n", i+1, r.Title, r.ID, r.ReasonCategory, score, r.Explanation)
	}
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := connect(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	text, err := a.Recommender.ExplainRecommendation(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, map[string]string{"explanation": text})
	}
	printf(cmd, "%s\n", text)
	return nil
}
