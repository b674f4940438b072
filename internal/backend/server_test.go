package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/prdsmith/internal/contract"
	"github.com/alexanderramin/prdsmith/internal/domain"
	"github.com/alexanderramin/prdsmith/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewServer(testutil.NewTestDB(t), TokenTable{"tok": "alice"}, opts...)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestServer_CreateNormalizesTimestamps(t *testing.T) {
	s := newTestServer(t)
	in := testutil.NewTestRecord("b1", testutil.WithTimestamps(time.Time{}, time.Time{}))

	rec := do(t, s, http.MethodPost, contract.RecordsPath, in)
	require.Equal(t, http.StatusCreated, rec.Code)

	out := decode[domain.Record](t, rec)
	assert.Equal(t, in.ID, out.ID)
	assert.True(t, out.CreatedAt.Equal(fixedNow))
	assert.True(t, out.UpdatedAt.Equal(fixedNow))
}

func TestServer_CreateRejectsInvalidRecord(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, contract.RecordsPath, domain.Record{ID: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, contract.CodeInvalid, decode[contract.ErrorResponse](t, rec).Code)
}

func TestServer_CreateDuplicateConflicts(t *testing.T) {
	s := newTestServer(t)
	in := testutil.NewTestRecord("b1")

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, contract.RecordsPath, in).Code)
	assert.Equal(t, http.StatusConflict, do(t, s, http.MethodPost, contract.RecordsPath, in).Code)
}

func TestServer_PatchMergesShallowly(t *testing.T) {
	s := newTestServer(t)
	in := testutil.NewTestRecord("b1", testutil.WithPayload(domain.Payload{
		"name":  "Login",
		"notes": map[string]any{"a": 1.0, "b": 2.0},
	}))
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, contract.RecordsPath, in).Code)

	rec := do(t, s, http.MethodPatch, contract.RecordsPath+"/"+in.ID,
		contract.UpdateRecordRequest{Payload: domain.Payload{"notes": map[string]any{"c": 3.0}}})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[domain.Record](t, rec)
	assert.Equal(t, "Login", out.Payload.String("name"))
	assert.Equal(t, map[string]any{"c": 3.0}, out.Payload["notes"], "nested values are replaced, not merged")
}

func TestServer_PatchMovesRecord(t *testing.T) {
	s := newTestServer(t)
	in := testutil.NewTestRecord("b1", testutil.WithField("name", "Login"))
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, contract.RecordsPath, in).Code)

	rec := do(t, s, http.MethodPatch, contract.RecordsPath+"/"+in.ID,
		contract.UpdateRecordRequest{ParentID: "b2", Kind: domain.KindPRD, Payload: domain.Payload{}})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[domain.Record](t, rec)
	assert.Equal(t, "b2", out.ParentID)
	assert.Equal(t, domain.KindPRD, out.Kind)
	assert.Equal(t, "Login", out.Payload.String("name"))

	list := decode[contract.RecordListResponse](t, do(t, s, http.MethodGet, contract.RecordsPath+"?parent_id=b1", nil))
	assert.Empty(t, list.Records)
}

func TestServer_PatchRollsBackOnWriteFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	s := NewServer(database, TokenTable{"tok": "alice"},
		WithUnitOfWork(&testutil.FailOnNthExecUoW{DB: database, FailOn: 1, Err: errors.New("disk full")}))
	in := testutil.NewTestRecord("b1", testutil.WithField("name", "Login"))
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, contract.RecordsPath, in).Code)

	rec := do(t, s, http.MethodPatch, contract.RecordsPath+"/"+in.ID,
		contract.UpdateRecordRequest{Payload: domain.Payload{"name": "Changed"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	got := decode[domain.Record](t, do(t, s, http.MethodGet, contract.RecordsPath+"/"+in.ID, nil))
	assert.Equal(t, "Login", got.Payload.String("name"))
}

func TestServer_ListRequiresParent(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, contract.RecordsPath, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ListByParent(t *testing.T) {
	s := newTestServer(t)
	for _, parent := range []string{"b1", "b1", "b2"} {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, contract.RecordsPath, testutil.NewTestRecord(parent)).Code)
	}

	rec := do(t, s, http.MethodGet, contract.RecordsPath+"?parent_id=b1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[contract.RecordListResponse](t, rec).Records, 2)
}

func TestServer_DeleteThenNotFound(t *testing.T) {
	s := newTestServer(t)
	in := testutil.NewTestRecord("b1")
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPost, contract.RecordsPath, in).Code)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, contract.RecordsPath+"/"+in.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, contract.RecordsPath+"/"+in.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, contract.RecordsPath+"/"+in.ID, nil).Code)
}

func TestServer_RequiresBearerToken(t *testing.T) {
	s := newTestServer(t)

	for _, header := range []string{"", "Basic abc", "Bearer wrong"} {
		req := httptest.NewRequest(http.MethodGet, contract.RecordsPath+"/x", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestServer_HealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenTable(t *testing.T) {
	owner, ok := TokenTable{}.Owner("anything")
	assert.True(t, ok)
	assert.Equal(t, "anything", owner)

	_, ok = TokenTable{}.Owner("")
	assert.False(t, ok)

	_, ok = TokenTable{"a": "alice"}.Owner("b")
	assert.False(t, ok)
}
