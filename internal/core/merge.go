package core

import "github.com/agenthands/companion/internal/core/model"

// Merge interleaves the two ranked lists, graph first. On each turn the
// list in turn skips ids already admitted and contributes its next new
// candidate. Once one list runs dry the other continues alone. An id keeps
// the attribution of whichever list admitted it first.
func Merge(graph, neural []model.Candidate, limit int) []model.Candidate {
	if limit <= 0 {
		return nil
	}

	out := make([]model.Candidate, 0, min(limit, len(graph)+len(neural)))
	seen := make(map[string]struct{}, limit)

	lists := [2][]model.Candidate{graph, neural}
	var pos [2]int

	// next advances list i to its next unseen candidate.
	next := func(i int) (model.Candidate, bool) {
		for pos[i] < len(lists[i]) {
			c := lists[i][pos[i]]
			pos[i]++
			if _, dup := seen[c.ID]; !dup {
				return c, true
			}
		}
		return model.Candidate{}, false
	}

	turn := 0
	exhausted := [2]bool{}
	for len(out) < limit && !(exhausted[0] && exhausted[1]) {
		if !exhausted[turn] {
			if c, ok := next(turn); ok {
				seen[c.ID] = struct{}{}
				out = append(out, c)
			} else {
				exhausted[turn] = true
			}
		}
		turn = 1 - turn
	}
	return out
}
