// Package generation turns a product brief into a prioritized feature list
// and a PRD through an LLM, and persists the results as records.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/llm"
)

// FeatureService generates a prioritized feature list from a brief.
type FeatureService interface {
	Generate(ctx context.Context, brief domain.Brief) ([]domain.Feature, error)
}

type featureListResponse struct {
	Features []domain.Feature `json:"features"`
}

type featureService struct {
	client llm.LLMClient
}

func NewFeatureService(client llm.LLMClient) FeatureService {
	return &featureService{client: client}
}

func (s *featureService) Generate(ctx context.Context, brief domain.Brief) ([]domain.Feature, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:           llm.TaskFeatures,
		SystemPrompt:   featureSystemPrompt,
		UserPrompt:     buildFeaturePrompt(brief),
		ResponseFormat: llm.FormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("llm feature generation failed: %w", err)
	}

	parsed, err := llm.ExtractJSON[featureListResponse](resp.Text, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract features: %w", err)
	}

	features := make([]domain.Feature, 0, len(parsed.Features))
	seen := make(map[string]bool, len(parsed.Features))
	for _, f := range parsed.Features {
		f.Name = strings.TrimSpace(f.Name)
		f.Priority = normalizePriority(f.Priority)
		f.Effort = domain.Effort(strings.ToUpper(strings.TrimSpace(string(f.Effort))))
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
		}
		key := strings.ToLower(f.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		features = append(features, f)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features in response", llm.ErrMalformedResponse)
	}

	domain.SortFeatures(features)
	return features, nil
}

// normalizePriority folds the spellings models commonly emit onto the MoSCoW
// buckets.
func normalizePriority(p domain.Priority) domain.Priority {
	s := strings.ToLower(strings.TrimSpace(string(p)))
	s = strings.NewReplacer("'", "", "’", "", " ", "", "-", "").Replace(s)
	switch s {
	case "musthave", "must":
		return domain.PriorityMust
	case "shouldhave", "should":
		return domain.PriorityShould
	case "couldhave", "could", "nicetohave":
		return domain.PriorityCould
	case "wonthave", "wont", "willnot":
		return domain.PriorityWont
	}
	return domain.Priority(s)
}
