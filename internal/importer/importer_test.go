package importer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/generation"
	"github.com/alexanderramin/prdsmith/internal/repository"
	"github.com/alexanderramin/prdsmith/internal/service"
	"github.com/alexanderramin/prdsmith/internal/testutil"
)

func validMinimalFile() *DraftFile {
	return &DraftFile{
		Version: 1,
		Brief:   BriefImport{Title: "Field notes", Description: "A notebook for field researchers."},
		Features: []FeatureImport{
			{Name: "Offline mode", Priority: "should", Effort: "l"},
			{Name: "Quick capture", Priority: "must", Effort: "S"},
		},
		PRD: &PRDImport{
			Title:        "Field notes PRD",
			Overview:     "Notes that work anywhere.",
			Requirements: []RequirementImport{{Feature: "quick capture", AcceptanceCriteria: []string{"Under a second"}}},
		},
	}
}

func TestValidateDraftFile_Valid(t *testing.T) {
	assert.Empty(t, ValidateDraftFile(validMinimalFile()))

	noPRD := validMinimalFile()
	noPRD.PRD = nil
	assert.Empty(t, ValidateDraftFile(noPRD))
}

func TestValidateDraftFile_CollectsEveryError(t *testing.T) {
	file := &DraftFile{
		Version: 2,
		Brief:   BriefImport{Description: "short"},
		Features: []FeatureImport{
			{Name: "Sync", Priority: "urgent", Effort: "XL"},
			{Name: "sync", Priority: "must"},
			{Priority: "could"},
		},
		PRD: &PRDImport{
			Requirements: []RequirementImport{{Feature: "Export"}, {}},
		},
	}

	errs := ValidateDraftFile(file)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}

	expected := []string{
		"version 2 is newer",
		"brief.title is required",
		"brief.description must be at least 10 characters",
		`features[0].priority "urgent"`,
		`features[0].effort "XL"`,
		`features[1].name "sync" is duplicated`,
		"features[2].name is required",
		"prd.title is required",
		"prd.overview is required",
		`prd.requirements[0].feature "Export" not found`,
		"prd.requirements[1].feature is required",
	}
	require.Len(t, msgs, len(expected))
	for i, want := range expected {
		assert.Contains(t, msgs[i], want)
	}
}

func TestValidateDraftFile_EmptyRequirements(t *testing.T) {
	file := validMinimalFile()
	file.PRD.Requirements = nil
	errs := ValidateDraftFile(file)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "prd.requirements must not be empty")
}

func TestConvert_SortsAndNormalizes(t *testing.T) {
	out := Convert(validMinimalFile())

	require.Len(t, out.Features, 2)
	assert.Equal(t, "Quick capture", out.Features[0].Name)
	assert.Equal(t, domain.EffortLarge, out.Features[1].Effort)
	require.NotNil(t, out.PRD)
	assert.NoError(t, out.PRD.Validate())
	assert.NoError(t, out.Brief.Validate())
}

func TestLoadDraftFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.json")
	data, err := json.Marshal(validMinimalFile())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	file, err := LoadDraftFile(path)
	require.NoError(t, err)
	assert.Equal(t, validMinimalFile(), file)

	_, err = ParseDraftFile([]byte("{not json"))
	assert.ErrorContains(t, err, "parsing draft file")

	_, err = LoadDraftFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExportThenImport_PreservesContent(t *testing.T) {
	ctx := context.Background()
	cache := repository.NewSQLiteRecordCache(testutil.NewTestDB(t), nil, 0)
	records := service.NewRecordService(cache, testutil.NewFakeRemote())
	ws := generation.NewWorkspace("", records, nil, nil)

	in := Convert(validMinimalFile())
	stored, err := ws.Store(ctx, in.Brief, in.Features, in.PRD)
	require.NoError(t, err)

	loaded, err := ws.Load(ctx, stored.Brief.ID)
	require.NoError(t, err)
	file, err := Export(loaded)
	require.NoError(t, err)
	assert.Empty(t, ValidateDraftFile(file))

	again := Convert(file)
	assert.Equal(t, in.Brief, again.Brief)
	assert.Equal(t, in.Features, again.Features)
	assert.Equal(t, in.PRD, again.PRD)
}
