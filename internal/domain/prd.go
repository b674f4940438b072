package domain

import "fmt"

// PRD is the structured Product Requirements Document generated from a brief
// and its feature list.
type PRD struct {
	Title         string        `json:"title"`
	Overview      string        `json:"overview"`
	Problem       string        `json:"problem"`
	Goals         []string      `json:"goals"`
	Personas      []Persona     `json:"personas,omitempty"`
	Requirements  []Requirement `json:"requirements"`
	Metrics       []string      `json:"metrics,omitempty"`
	Risks         []string      `json:"risks,omitempty"`
	OpenQuestions []string      `json:"open_questions,omitempty"`
}

type Persona struct {
	Name  string `json:"name"`
	Needs string `json:"needs"`
}

// Requirement ties an acceptance criterion list to a named feature.
type Requirement struct {
	Feature            string   `json:"feature"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

func (p *PRD) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: prd title is required", ErrValidation)
	}
	if p.Overview == "" {
		return fmt.Errorf("%w: prd overview is required", ErrValidation)
	}
	if len(p.Requirements) == 0 {
		return fmt.Errorf("%w: prd must list at least one requirement", ErrValidation)
	}
	for i, r := range p.Requirements {
		if r.Feature == "" {
			return fmt.Errorf("%w: requirement %d has no feature", ErrValidation, i)
		}
	}
	return nil
}
