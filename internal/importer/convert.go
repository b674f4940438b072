package importer

import (
	"strings"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/generation"
)

// Converted is a draft file turned into domain views, ready for
// generation.Workspace.Store.
type Converted struct {
	Brief    domain.Brief
	Features []domain.Feature
	PRD      *domain.PRD
}

// Convert transforms a validated DraftFile into domain views. Features come
// back sorted by priority. Call ValidateDraftFile first; Convert assumes the
// file is valid.
func Convert(file *DraftFile) *Converted {
	out := &Converted{
		Brief: domain.Brief{
			Title:       strings.TrimSpace(file.Brief.Title),
			Description: strings.TrimSpace(file.Brief.Description),
			TargetUsers: file.Brief.TargetUsers,
			Goals:       file.Brief.Goals,
		},
		Features: make([]domain.Feature, 0, len(file.Features)),
	}

	for _, f := range file.Features {
		out.Features = append(out.Features, domain.Feature{
			Name:        strings.TrimSpace(f.Name),
			Description: f.Description,
			Priority:    domain.Priority(f.Priority),
			Rationale:   f.Rationale,
			Effort:      domain.Effort(strings.ToUpper(f.Effort)),
		})
	}
	domain.SortFeatures(out.Features)

	if p := file.PRD; p != nil {
		prd := &domain.PRD{
			Title:         p.Title,
			Overview:      p.Overview,
			Problem:       p.Problem,
			Goals:         p.Goals,
			Metrics:       p.Metrics,
			Risks:         p.Risks,
			OpenQuestions: p.OpenQuestions,
		}
		for _, persona := range p.Personas {
			prd.Personas = append(prd.Personas, domain.Persona{Name: persona.Name, Needs: persona.Needs})
		}
		for _, r := range p.Requirements {
			prd.Requirements = append(prd.Requirements, domain.Requirement{
				Feature:            r.Feature,
				Description:        r.Description,
				AcceptanceCriteria: r.AcceptanceCriteria,
			})
		}
		out.PRD = prd
	}

	return out
}

// Export renders a stored draft as a DraftFile. Record ids and timestamps
// are not exported; importing always creates new records.
func Export(draft *generation.Draft) (*DraftFile, error) {
	brief, err := generation.DecodeBrief(draft.Brief)
	if err != nil {
		return nil, err
	}
	file := &DraftFile{
		Version: CurrentVersion,
		Brief: BriefImport{
			Title:       brief.Title,
			Description: brief.Description,
			TargetUsers: brief.TargetUsers,
			Goals:       brief.Goals,
		},
		Features: make([]FeatureImport, 0, len(draft.Features)),
	}

	for _, rec := range draft.Features {
		f, err := generation.DecodeFeature(rec)
		if err != nil {
			return nil, err
		}
		file.Features = append(file.Features, FeatureImport{
			Name:        f.Name,
			Description: f.Description,
			Priority:    string(f.Priority),
			Rationale:   f.Rationale,
			Effort:      string(f.Effort),
		})
	}

	if draft.PRD != nil {
		p, err := generation.DecodePRD(draft.PRD)
		if err != nil {
			return nil, err
		}
		prd := &PRDImport{
			Title:         p.Title,
			Overview:      p.Overview,
			Problem:       p.Problem,
			Goals:         p.Goals,
			Metrics:       p.Metrics,
			Risks:         p.Risks,
			OpenQuestions: p.OpenQuestions,
		}
		for _, persona := range p.Personas {
			prd.Personas = append(prd.Personas, PersonaImport{Name: persona.Name, Needs: persona.Needs})
		}
		for _, r := range p.Requirements {
			prd.Requirements = append(prd.Requirements, RequirementImport{
				Feature:            r.Feature,
				Description:        r.Description,
				AcceptanceCriteria: r.AcceptanceCriteria,
			})
		}
		file.PRD = prd
	}

	return file, nil
}
