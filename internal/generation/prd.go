package generation

import (
	"context"
	"fmt"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/llm"
)

// PRDService writes a structured PRD from a brief and its features.
type PRDService interface {
	Generate(ctx context.Context, brief domain.Brief, features []domain.Feature) (*domain.PRD, error)
}

type prdService struct {
	client llm.LLMClient
}

func NewPRDService(client llm.LLMClient) PRDService {
	return &prdService{client: client}
}

func (s *prdService) Generate(ctx context.Context, brief domain.Brief, features []domain.Feature) (*domain.PRD, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: a PRD needs at least one feature", domain.ErrValidation)
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:           llm.TaskPRD,
		SystemPrompt:   prdSystemPrompt,
		UserPrompt:     buildPRDPrompt(brief, features),
		ResponseFormat: llm.FormatJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("llm prd generation failed: %w", err)
	}

	prd, err := llm.ExtractJSON(resp.Text, validatePRD)
	if err != nil {
		return nil, fmt.Errorf("failed to extract prd: %w", err)
	}
	if prd.Title == "" {
		prd.Title = brief.Title
	}
	return &prd, nil
}

func validatePRD(p domain.PRD) error {
	if p.Title == "" {
		// Filled from the brief by the caller.
		p.Title = "untitled"
	}
	return p.Validate()
}
