package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/llm"
	"github.com/alexanderramin/prdsmith/internal/repository"
	"github.com/alexanderramin/prdsmith/internal/service"
	"github.com/alexanderramin/prdsmith/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLLMClient answers each task with a canned response.
type mockLLMClient struct {
	responses map[llm.TaskType]string
	errs      map[llm.TaskType]error
	requests  []llm.GenerateRequest
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	if err := m.errs[req.Task]; err != nil {
		return nil, err
	}
	return &llm.GenerateResponse{Text: m.responses[req.Task], Model: "mock"}, nil
}

func (m *mockLLMClient) Available(context.Context) bool { return true }

const featuresJSON = "```json\n" + `{"features": [
  {"name": "Streak reminders", "description": "Daily push reminder", "priority": "Should", "effort": "s"},
  {"name": "Habit check-in", "description": "Mark a habit done", "priority": "MUST", "effort": "M"},
  {"name": "Social sharing", "description": "Share streaks", "priority": "won't have"},
  {"name": "habit check-in", "description": "duplicate", "priority": "must"}
]}` + "\n```"

const prdJSON = `{
  "title": "Habit tracker PRD",
  "overview": "A mobile app for building habits.",
  "problem": "People abandon habits.",
  "goals": ["Retain users for 30 days"],
  "requirements": [
    {"feature": "Habit check-in", "description": "One tap check-in", "acceptance_criteria": ["Check-in under 2 seconds"]},
    {"feature": "Streak reminders", "description": "Daily reminder"}
  ],
  "metrics": ["D30 retention"]
}`

func testBrief() domain.Brief {
	return domain.Brief{
		Title:       "Habit tracker",
		Description: "A mobile app that helps people build daily habits.",
		TargetUsers: "Busy professionals",
		Goals:       []string{"Daily engagement"},
	}
}

func healthyClient() *mockLLMClient {
	return &mockLLMClient{responses: map[llm.TaskType]string{
		llm.TaskFeatures: featuresJSON,
		llm.TaskPRD:      prdJSON,
	}}
}

func TestFeatureService_Generate_SortsAndNormalizes(t *testing.T) {
	client := healthyClient()
	features, err := NewFeatureService(client).Generate(context.Background(), testBrief())
	require.NoError(t, err)

	require.Len(t, features, 3, "case-insensitive duplicate names collapse")
	assert.Equal(t, "Habit check-in", features[0].Name)
	assert.Equal(t, domain.PriorityMust, features[0].Priority)
	assert.Equal(t, domain.PriorityShould, features[1].Priority)
	assert.Equal(t, domain.EffortSmall, features[1].Effort)
	assert.Equal(t, domain.PriorityWont, features[2].Priority)

	req := client.requests[0]
	assert.Equal(t, llm.FormatJSON, req.ResponseFormat)
	assert.Contains(t, req.UserPrompt, "Habit tracker")
	assert.Contains(t, req.UserPrompt, "Busy professionals")
}

func TestFeatureService_Generate_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":         "Sorry, I cannot help.",
		"empty list":       `{"features": []}`,
		"unknown priority": `{"features": [{"name": "X", "priority": "urgent"}]}`,
		"missing name":     `{"features": [{"priority": "must"}]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			client := &mockLLMClient{responses: map[llm.TaskType]string{llm.TaskFeatures: text}}
			_, err := NewFeatureService(client).Generate(context.Background(), testBrief())
			assert.ErrorIs(t, err, llm.ErrMalformedResponse)
		})
	}
}

func TestFeatureService_Generate_InvalidBriefSkipsLLM(t *testing.T) {
	client := healthyClient()
	_, err := NewFeatureService(client).Generate(context.Background(), domain.Brief{Title: "x", Description: "short"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, client.requests)
}

func TestFeatureService_Generate_PropagatesLLMErrors(t *testing.T) {
	client := &mockLLMClient{errs: map[llm.TaskType]error{llm.TaskFeatures: llm.ErrRateLimited}}
	_, err := NewFeatureService(client).Generate(context.Background(), testBrief())
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestPRDService_Generate(t *testing.T) {
	client := healthyClient()
	features := []domain.Feature{{Name: "Habit check-in", Description: "Mark done", Priority: domain.PriorityMust, Effort: domain.EffortMedium}}

	prd, err := NewPRDService(client).Generate(context.Background(), testBrief(), features)
	require.NoError(t, err)
	assert.Equal(t, "Habit tracker PRD", prd.Title)
	require.Len(t, prd.Requirements, 2)
	assert.Equal(t, []string{"Check-in under 2 seconds"}, prd.Requirements[0].AcceptanceCriteria)

	assert.Contains(t, client.requests[0].UserPrompt, "[must] Habit check-in: Mark done (effort M)")
}

func TestPRDService_Generate_TitleFallsBackToBrief(t *testing.T) {
	client := &mockLLMClient{responses: map[llm.TaskType]string{
		llm.TaskPRD: strings.Replace(prdJSON, `"title": "Habit tracker PRD",`, "", 1),
	}}
	prd, err := NewPRDService(client).Generate(context.Background(), testBrief(), []domain.Feature{{Name: "A", Priority: domain.PriorityMust}})
	require.NoError(t, err)
	assert.Equal(t, "Habit tracker", prd.Title)
}

func TestPRDService_Generate_MissingRequirements(t *testing.T) {
	client := &mockLLMClient{responses: map[llm.TaskType]string{
		llm.TaskPRD: `{"title": "T", "overview": "O", "requirements": []}`,
	}}
	_, err := NewPRDService(client).Generate(context.Background(), testBrief(), []domain.Feature{{Name: "A", Priority: domain.PriorityMust}})
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func newTestWorkspace(t *testing.T, client llm.LLMClient) (*Workspace, *testutil.FakeRemote, *repository.SQLiteRecordCache) {
	t.Helper()
	cache := repository.NewSQLiteRecordCache(testutil.NewTestDB(t), nil, 0)
	remote := testutil.NewFakeRemote()
	records := service.NewRecordService(cache, remote)
	return NewWorkspace("", records, NewFeatureService(client), NewPRDService(client)), remote, cache
}

func TestWorkspace_DraftBrief_PersistsEverything(t *testing.T) {
	ws, remote, _ := newTestWorkspace(t, healthyClient())
	ctx := context.Background()

	draft, err := ws.DraftBrief(ctx, testBrief())
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkspaceID, draft.Brief.ParentID)
	assert.Equal(t, domain.KindBrief, draft.Brief.Kind)
	require.Len(t, draft.Features, 3)
	require.NotNil(t, draft.PRD)
	for _, f := range draft.Features {
		assert.Equal(t, draft.Brief.ID, f.ParentID)
		_, ok := remote.Stored(f.ID)
		assert.True(t, ok)
	}

	loaded, err := ws.Load(ctx, draft.Brief.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Features, 3)
	first, err := DecodeFeature(loaded.Features[0])
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMust, first.Priority)

	prd, err := DecodePRD(loaded.PRD)
	require.NoError(t, err)
	assert.Equal(t, "Habit tracker PRD", prd.Title)

	brief, err := DecodeBrief(loaded.Brief)
	require.NoError(t, err)
	assert.Equal(t, testBrief(), brief)

	assert.Len(t, ws.Briefs(ctx), 1)
}

func TestWorkspace_DraftBrief_OfflineStillPersistsLocally(t *testing.T) {
	ws, remote, cache := newTestWorkspace(t, healthyClient())
	remote.GoDown()

	draft, err := ws.DraftBrief(context.Background(), testBrief())
	require.NoError(t, err)

	_, ok := cache.Get(context.Background(), draft.PRD.ID)
	assert.True(t, ok)
	assert.Len(t, cache.ListAll(context.Background()), 5)
}

func TestWorkspace_DraftBrief_MalformedPersistsNothing(t *testing.T) {
	for _, task := range []llm.TaskType{llm.TaskFeatures, llm.TaskPRD} {
		t.Run(string(task), func(t *testing.T) {
			client := healthyClient()
			client.responses[task] = "not json at all"
			ws, _, cache := newTestWorkspace(t, client)

			_, err := ws.DraftBrief(context.Background(), testBrief())
			assert.ErrorIs(t, err, llm.ErrMalformedResponse)
			assert.Empty(t, cache.ListAll(context.Background()))
		})
	}
}

func TestWorkspace_Load_PicksLatestPRD(t *testing.T) {
	ctx := context.Background()
	cache := repository.NewSQLiteRecordCache(testutil.NewTestDB(t), nil, 0)
	remote := testutil.NewFakeRemote()
	ws := NewWorkspace("workspace", service.NewRecordService(cache, remote), nil, nil)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	brief := testutil.NewTestBrief()
	older := testutil.NewTestRecord(brief.ID, testutil.WithKind(domain.KindPRD),
		testutil.WithPayload(domain.Payload{"title": "v1"}), testutil.WithTimestamps(base, base))
	newer := testutil.NewTestRecord(brief.ID, testutil.WithKind(domain.KindPRD),
		testutil.WithPayload(domain.Payload{"title": "v2"}), testutil.WithTimestamps(base, base.Add(time.Hour)))
	could := testutil.NewTestRecord(brief.ID, testutil.WithField("priority", "could"))
	must := testutil.NewTestRecord(brief.ID, testutil.WithField("priority", "must"))
	remote.Seed(brief, older, newer, could, must)

	draft, err := ws.Load(ctx, brief.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", draft.PRD.Payload.String("title"))
	require.Len(t, draft.Features, 2)
	assert.Equal(t, must.ID, draft.Features[0].ID)

	briefs := ws.Briefs(ctx)
	require.Len(t, briefs, 1)
	assert.Equal(t, brief.ID, briefs[0].ID)
}

func TestWorkspace_Load_MissingBrief(t *testing.T) {
	ws, _, _ := newTestWorkspace(t, healthyClient())
	_, err := ws.Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
