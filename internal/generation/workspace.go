package generation

import (
	"context"
	"fmt"
	"sort"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/service"
)

// DefaultWorkspaceID parents brief records when no workspace is configured.
const DefaultWorkspaceID = "default"

// Draft is a brief with everything generated from it, as stored records.
type Draft struct {
	Brief    *domain.Record
	Features []*domain.Record
	PRD      *domain.Record // nil when none was stored
}

// Workspace composes generation with persistence through the record
// coordinator. Briefs are parented by the workspace ID; features and the
// PRD are parented by the brief ID.
type Workspace struct {
	id       string
	records  service.RecordService
	features FeatureService
	prds     PRDService
}

func NewWorkspace(id string, records service.RecordService, features FeatureService, prds PRDService) *Workspace {
	if id == "" {
		id = DefaultWorkspaceID
	}
	return &Workspace{id: id, records: records, features: features, prds: prds}
}

func (w *Workspace) ID() string { return w.id }

// DraftBrief generates features and a PRD for brief and stores all three.
// Nothing is stored unless both generations succeed.
func (w *Workspace) DraftBrief(ctx context.Context, brief domain.Brief) (*Draft, error) {
	if err := brief.Validate(); err != nil {
		return nil, err
	}

	features, err := w.features.Generate(ctx, brief)
	if err != nil {
		return nil, err
	}
	prd, err := w.prds.Generate(ctx, brief, features)
	if err != nil {
		return nil, err
	}

	return w.Store(ctx, brief, features, prd)
}

// Store saves an already generated draft: the brief under the workspace, then
// each feature and the PRD under the brief. prd may be nil.
func (w *Workspace) Store(ctx context.Context, brief domain.Brief, features []domain.Feature, prd *domain.PRD) (*Draft, error) {
	briefPayload, err := domain.ToPayload(brief)
	if err != nil {
		return nil, err
	}
	briefRec, err := w.records.Save(ctx, domain.NewRecord(w.id, domain.KindBrief, briefPayload))
	if err != nil {
		return nil, fmt.Errorf("saving brief: %w", err)
	}

	draft := &Draft{Brief: briefRec}
	for _, f := range features {
		rec, err := w.save(ctx, briefRec.ID, domain.KindFeature, f)
		if err != nil {
			return nil, fmt.Errorf("saving feature %q: %w", f.Name, err)
		}
		draft.Features = append(draft.Features, rec)
	}
	if prd == nil {
		return draft, nil
	}
	draft.PRD, err = w.save(ctx, briefRec.ID, domain.KindPRD, prd)
	if err != nil {
		return nil, fmt.Errorf("saving prd: %w", err)
	}
	return draft, nil
}

func (w *Workspace) save(ctx context.Context, parentID string, kind domain.RecordKind, view any) (*domain.Record, error) {
	payload, err := domain.ToPayload(view)
	if err != nil {
		return nil, err
	}
	return w.records.Save(ctx, domain.NewRecord(parentID, kind, payload))
}

// Briefs lists the workspace's brief records.
func (w *Workspace) Briefs(ctx context.Context) []*domain.Record {
	return w.records.ListByParent(ctx, w.id)
}

// Load reassembles a stored draft. A missing brief is domain.ErrNotFound.
func (w *Workspace) Load(ctx context.Context, briefID string) (*Draft, error) {
	brief, err := w.records.RequireByID(ctx, briefID)
	if err != nil {
		return nil, err
	}

	draft := &Draft{Brief: brief}
	for _, rec := range w.records.ListByParent(ctx, briefID) {
		switch rec.Kind {
		case domain.KindFeature:
			draft.Features = append(draft.Features, rec)
		case domain.KindPRD:
			if draft.PRD == nil || rec.UpdatedAt.After(draft.PRD.UpdatedAt) {
				draft.PRD = rec
			}
		}
	}
	sortFeatureRecords(draft.Features)
	return draft, nil
}

// DecodeFeature reads a feature record's payload.
func DecodeFeature(rec *domain.Record) (domain.Feature, error) {
	var f domain.Feature
	err := domain.FromPayload(rec.Payload, &f)
	return f, err
}

// DecodePRD reads a PRD record's payload.
func DecodePRD(rec *domain.Record) (domain.PRD, error) {
	var p domain.PRD
	err := domain.FromPayload(rec.Payload, &p)
	return p, err
}

// DecodeBrief reads a brief record's payload.
func DecodeBrief(rec *domain.Record) (domain.Brief, error) {
	var b domain.Brief
	err := domain.FromPayload(rec.Payload, &b)
	return b, err
}

func sortFeatureRecords(recs []*domain.Record) {
	rank := func(r *domain.Record) int {
		return domain.Priority(r.Payload.String("priority")).Rank()
	}
	sort.SliceStable(recs, func(i, j int) bool { return rank(recs[i]) < rank(recs[j]) })
}
