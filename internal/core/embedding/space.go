package embedding

import (
	"fmt"
	"time"

	"github.com/agenthands/companion/internal/core/model"
)

type Entry struct {
	Ref    model.NodeRef
	Vector []float32
}

// Space is a node → vector mapping with a fixed dimensionality. Entries
// keep insertion order, which is the tie-break order for similarity ranking.
type Space struct {
	TrainedAt time.Time

	dimensions int
	entries    []Entry
	index      map[model.NodeRef]int
}

func NewSpace(dimensions int) *Space {
	return &Space{dimensions: dimensions, index: make(map[model.NodeRef]int)}
}

func (s *Space) Add(ref model.NodeRef, vec []float32) error {
	if len(vec) != s.dimensions {
		return fmt.Errorf("vector for %s has %d dimensions, want %d", ref, len(vec), s.dimensions)
	}
	if _, ok := s.index[ref]; ok {
		return fmt.Errorf("duplicate vector for %s", ref)
	}
	s.index[ref] = len(s.entries)
	s.entries = append(s.entries, Entry{Ref: ref, Vector: vec})
	return nil
}

func (s *Space) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Space) Dimensions() int { return s.dimensions }

func (s *Space) Lookup(ref model.NodeRef) ([]float32, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[ref]
	if !ok {
		return nil, false
	}
	return s.entries[i].Vector, true
}

// Entries returns the backing slice; callers must not modify it.
func (s *Space) Entries() []Entry {
	if s == nil {
		return nil
	}
	return s.entries
}

func (s *Space) Refs() []model.NodeRef {
	refs := make([]model.NodeRef, 0, s.Len())
	for _, e := range s.Entries() {
		refs = append(refs, e.Ref)
	}
	return refs
}

func (s *Space) CountByKind() map[model.NodeKind]int {
	counts := make(map[model.NodeKind]int)
	for _, e := range s.Entries() {
		counts[e.Ref.Kind]++
	}
	return counts
}
