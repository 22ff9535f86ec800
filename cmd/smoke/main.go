// Command smoke exercises a running server end to end.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	userID  string
	wait    time.Duration
)

var client = &http.Client{Timeout: 30 * time.Second}

var rootCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Smoke-test a running recommender server",
	Long: `Checks health, asks for a cold-start recommendation and, when a user is
given, a known-user recommendation and its explanation.

Examples:
  smoke
  smoke --url http://localhost:9090 --user U123 --wait 0s`,
	SilenceUsage: true,
	RunE:         runSmoke,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	f.StringVarP(&userID, "user", "u", "", "known user id to query (optional)")
	f.DurationVar(&wait, "wait", 2*time.Second, "time to wait for the server to start")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type recommendation struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ReasonCategory string `json:"reason_category"`
	Explanation    string `json:"explanation"`
}

func runSmoke(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	time.Sleep(wait)
	fmt.Fprintln(out, "Starting smoke test...")

	fmt.Fprintln(out, "1. Health...")
	var health map[string]any
	if err := send(http.MethodGet, "/healthz", nil, &health); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	fmt.Fprintf(out, "PASSED: health %v\n", health)

	fmt.Fprintln(out, "2. Cold-start recommendation...")
	var cold []recommendation
	payload := map[string]any{"growing_stress": "Yes", "mood_swings": "High", "strategy": "hybrid"}
	if err := send(http.MethodPost, "/recommend", payload, &cold); err != nil {
		return fmt.Errorf("cold-start recommendation: %w", err)
	}
	printRecs(out, cold)
	fmt.Fprintln(out, "PASSED: cold-start recommendation")

	if userID == "" {
		return nil
	}

	fmt.Fprintln(out, "3. Known-user recommendation...")
	var known []recommendation
	if err := send(http.MethodPost, "/recommend", map[string]any{"user_id": userID}, &known); err != nil {
		return fmt.Errorf("known-user recommendation: %w", err)
	}
	printRecs(out, known)
	fmt.Fprintln(out, "PASSED: known-user recommendation")

	if len(known) == 0 {
		return nil
	}
	fmt.Fprintln(out, "4. Explain...")
	var explanation map[string]string
	query := url.Values{"activity_id": {known[0].ID}, "user_id": {userID}}
	if err := send(http.MethodGet, "/explain?"+query.Encode(), nil, &explanation); err != nil {
		return fmt.Errorf("explain: %w", err)
	}
	fmt.Fprintf(out, "PASSED: explain %q\n", explanation["explanation"])
	return nil
}

func printRecs(w io.Writer, recs []recommendation) {
	for _, r := range recs {
		fmt.Fprintf(w, "  - [%s] %s (%s): %s\n", r.ID, r.Title, r.ReasonCategory, r.Explanation)
	}
}

func send(method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
