package domain

import (
	"fmt"
	"strings"
)

// Brief is the free-text product description a user submits.
type Brief struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TargetUsers string   `json:"target_users,omitempty"`
	Goals       []string `json:"goals,omitempty"`
}

// Validate requires a title and a description of at least a sentence.
func (b *Brief) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: brief title is required", ErrValidation)
	}
	if len(strings.TrimSpace(b.Description)) < 10 {
		return fmt.Errorf("%w: brief description must be at least 10 characters", ErrValidation)
	}
	return nil
}
