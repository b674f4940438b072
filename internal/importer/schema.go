// Package importer reads and writes drafts as JSON files so a brief, its
// features and its PRD can move between workspaces or be authored by hand.
package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// DraftFile is the top-level JSON structure of an exported draft.
type DraftFile struct {
	Version  int             `json:"version"`
	Brief    BriefImport     `json:"brief"`
	Features []FeatureImport `json:"features"`
	PRD      *PRDImport      `json:"prd,omitempty"`
}

// CurrentVersion is written by Export and the highest version Parse accepts.
const CurrentVersion = 1

type BriefImport struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TargetUsers string   `json:"target_users,omitempty"`
	Goals       []string `json:"goals,omitempty"`
}

type FeatureImport struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority"`
	Rationale   string `json:"rationale,omitempty"`
	Effort      string `json:"effort,omitempty"`
}

type PRDImport struct {
	Title         string              `json:"title"`
	Overview      string              `json:"overview"`
	Problem       string              `json:"problem,omitempty"`
	Goals         []string            `json:"goals,omitempty"`
	Personas      []PersonaImport     `json:"personas,omitempty"`
	Requirements  []RequirementImport `json:"requirements"`
	Metrics       []string            `json:"metrics,omitempty"`
	Risks         []string            `json:"risks,omitempty"`
	OpenQuestions []string            `json:"open_questions,omitempty"`
}

type PersonaImport struct {
	Name  string `json:"name"`
	Needs string `json:"needs,omitempty"`
}

type RequirementImport struct {
	Feature            string   `json:"feature"`
	Description        string   `json:"description,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
}

// ParseDraftFile decodes a draft file. It does not validate; call
// ValidateDraftFile before Convert.
func ParseDraftFile(data []byte) (*DraftFile, error) {
	var file DraftFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing draft file: %w", err)
	}
	return &file, nil
}

// LoadDraftFile reads and parses a draft JSON file.
func LoadDraftFile(path string) (*DraftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDraftFile(data)
}
