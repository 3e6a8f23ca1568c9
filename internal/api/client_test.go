package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refdesk/internal/approval"
	"refdesk/internal/auth"
	"refdesk/internal/domain"
	"refdesk/internal/loading"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type fakeServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
	routes   map[string]func(w http.ResponseWriter)
}

func newFakeServer(t *testing.T) *fakeServer {
	fs := &fakeServer{routes: map[string]func(w http.ResponseWriter){}}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fs.mu.Lock()
		fs.requests = append(fs.requests, recorded{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Clone(), string(body)})
		route := fs.routes[r.Method+" "+r.URL.Path]
		fs.mu.Unlock()
		if route == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"code":"NOT_FOUND","message":"no route"}`))
			return
		}
		route(w)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) handle(route string, status int, body string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.routes[route] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (fs *fakeServer) last() recorded {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.requests[len(fs.requests)-1]
}

func newTestClient(t *testing.T, fs *fakeServer, opts ...Option) *Client {
	c, err := New(fs.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
	_, err = New("://")
	assert.Error(t, err)
}

func TestListDecodesEnvelopeAndMeta(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("GET /api/v1/app-schemes", 200, `{"success":true,"code":"OK","data":[{"appSchemeId":1,"oneLink":"x"}],
		"meta":{"page":2,"size":10,"totalElements":31,"totalPages":4}}`)

	c := newTestClient(t, fs)
	page, err := c.List(context.Background(), "app-schemes", ListQuery{Page: 2, Size: 10, Filter: map[string]string{"status": "in_service", "empty": ""}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.Items[0].String("appSchemeId"))
	assert.Equal(t, domain.PageMeta{Page: 2, Size: 10, TotalElements: 31, TotalPages: 4}, page.Meta)
	assert.Equal(t, "page=2&size=10&status=in_service", fs.last().Query)
}

func TestPlainBodyWithoutEnvelope(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("GET /api/v1/app-schemes/7", 200, `{"appSchemeId":7,"description":"d"}`)

	row, err := newTestClient(t, fs).Get(context.Background(), "app-schemes", "7")
	require.NoError(t, err)
	assert.Equal(t, "d", row.String("description"))
}

func TestHTTPErrorBecomesAPIError(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("POST /api/v1/app-schemes/7/remove", 409, `{"success":false,"code":"LOCKED","message":"pending approval","data":{"id":7}}`)

	err := newTestClient(t, fs).Remove(context.Background(), "app-schemes", "7")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.Status)
	assert.Equal(t, "LOCKED", apiErr.Code)
	assert.Equal(t, "pending approval", apiErr.Message)
	assert.JSONEq(t, `{"id":7}`, string(apiErr.Data))
	assert.Contains(t, apiErr.URL, "/api/v1/app-schemes/7/remove")
	assert.Equal(t, 409, StatusOf(err))
}

func TestSuccessFalseWithOKStatusIsAnError(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("POST /api/v1/app-schemes", 200, `{"success":false,"code":"DUP","message":"duplicate"}`)

	_, err := newTestClient(t, fs).Create(context.Background(), "app-schemes", domain.Row{"oneLink": "x"})
	require.Error(t, err)
	assert.Equal(t, "duplicate", err.(*Error).Message)
}

func TestUnauthorized(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("GET /api/v1/app-schemes", 401, ``)

	_, err := newTestClient(t, fs).List(context.Background(), "app-schemes", ListQuery{})
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestTransportErrorHasNoStatus(t *testing.T) {
	fs := newFakeServer(t)
	c := newTestClient(t, fs)
	fs.Close()

	_, err := c.Get(context.Background(), "app-schemes", "1")
	require.Error(t, err)
	assert.Equal(t, 0, StatusOf(err))
}

func TestHeadersAndTracker(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("POST /api/v1/app-schemes/bulk-remove", 200, `{"success":true,"data":{"totalCount":2,"successCount":2,"failCount":0}}`)

	var flips []bool
	tracker := loading.NewTracker(func(on bool, _ int) { flips = append(flips, on) })
	c := newTestClient(t, fs, WithTokenSource(auth.Static("tok")), WithTracker(tracker))

	res, err := c.BulkRemove(context.Background(), "app-schemes", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchResult{TotalCount: 2, SuccessCount: 2}, res)

	req := fs.last()
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	_, err = uuid.Parse(req.Header.Get("X-Request-Id"))
	assert.NoError(t, err)
	assert.JSONEq(t, `["1","2"]`, req.Body)

	assert.Equal(t, []bool{true, false}, flips)
	assert.False(t, tracker.IsLoading())
}

func TestMissingTokenSendsAnonymously(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("GET /api/v1/app-schemes/1", 200, `{"success":true,"data":{}}`)

	c := newTestClient(t, fs, WithTokenSource(auth.Static("")))
	_, err := c.Get(context.Background(), "app-schemes", "1")
	require.NoError(t, err)
	assert.Empty(t, fs.last().Header.Get("Authorization"))
}

func TestApprovalEndpoints(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("GET /api/v1/recommended-questions/approval-queue", 200, `{"success":true,"data":[
		{"approvalRequestId":5,"targetId":9,"requestKind":"CREATE","approvalStatus":"create_requested","isRetracted":0,"isApplied":0}]}`)
	fs.handle("POST /api/v1/recommended-questions/approval-queue", 200, `{"success":true}`)
	fs.handle("POST /api/v1/recommended-questions/approval-queue/retract", 200, `{"success":true}`)
	fs.handle("POST /api/v1/approval-requests", 200, `{"success":true}`)
	fs.handle("POST /api/v1/approval-requests/5/retract", 200, `{"success":true}`)
	c := newTestClient(t, fs)
	ctx := context.Background()

	reqs, err := c.ListApprovals(ctx, "recommended-questions", map[string]string{"status": "create_requested"})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, approval.FlexString("5"), reqs[0].ID)
	assert.Equal(t, "status=create_requested", fs.last().Query)

	require.NoError(t, c.ApproveRequests(ctx, "recommended-questions", []string{"5"}))
	assert.JSONEq(t, `["5"]`, fs.last().Body)

	require.NoError(t, c.RetractRequests(ctx, "recommended-questions", []string{"5"}))
	assert.Equal(t, "/api/v1/recommended-questions/approval-queue/retract", fs.last().Path)

	sub := approval.Submission{RequestKind: approval.KindDelete, TargetID: "9", List: []any{}}
	require.NoError(t, c.SubmitRequest(ctx, "recommended-questions", sub))
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(fs.last().Body), &body))
	assert.Equal(t, "DELETE", body["requestKind"])
	assert.Equal(t, float64(0), body["isRetracted"])
}

func TestQuestionCategoriesSkipsInactive(t *testing.T) {
	fs := newFakeServer(t)
	fs.handle("GET /api/v1/common-codes/mappings/qst-categories", 200, `{"success":true,"data":[
		{"code":"ai_calc_save","code_name":"save","is_active":1,"code_group_id":3},
		{"code":"ai_calc_old","code_name":"old","is_active":"0","code_group_id":3}]}`)

	opts, err := newTestClient(t, fs).QuestionCategories(context.Background(), "ai_calc")
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "ai_calc_save", opts[0].Value)
	assert.Equal(t, "serviceCd=ai_calc", fs.last().Query)
}
