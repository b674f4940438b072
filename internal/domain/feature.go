package domain

import (
	"fmt"
	"sort"
)

// Feature is one entry of the prioritized feature list generated from a brief.
type Feature struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Rationale   string   `json:"rationale,omitempty"`
	Effort      Effort   `json:"effort,omitempty"`
}

func (f *Feature) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: feature name is required", ErrValidation)
	}
	if !ValidPriorities[string(f.Priority)] {
		return fmt.Errorf("%w: feature %q has unknown priority %q", ErrValidation, f.Name, f.Priority)
	}
	return nil
}

// SortFeatures orders features must → should → could → wont, keeping the
// generated order within a bucket.
func SortFeatures(features []Feature) {
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].Priority.Rank() < features[j].Priority.Rank()
	})
}
