package model

const (
	// ReasonAIMatch marks candidates found by embedding similarity.
	ReasonAIMatch = "AI Match"

	CategoryActivity = "Activity"
)

type Activity struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// Candidate is one recommendation produced by a matcher. It lives for a
// single request.
type Candidate struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Type           string   `json:"type"`
	Category       string   `json:"category"`
	ReasonCategory string   `json:"reason_category"`
	Score          *float64 `json:"score,omitempty"`
}

func (a Activity) Candidate(reason string) Candidate {
	return Candidate{
		ID:             a.ID,
		Title:          a.Title,
		Type:           a.Type,
		Category:       a.Category,
		ReasonCategory: reason,
	}
}
