package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const queueBody = `{"success":true,"data":[
	{"approvalRequestId":5,"targetType":"recommended_question","targetId":9,"requestKind":"UPDATE",
	 "approvalStatus":"update_requested","requesterName":"kim","isRetracted":0,"isApplied":0}]}`

type backend struct {
	*httptest.Server
	mu    sync.Mutex
	posts []string
}

func newBackend(t *testing.T) *backend {
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/approval-queue"):
			fmt.Fprint(w, queueBody)
		case r.Method == http.MethodPost:
			b.mu.Lock()
			b.posts = append(b.posts, r.URL.Path)
			b.mu.Unlock()
			fmt.Fprint(w, `{"success":true}`)
		case r.URL.Path == "/api/v1/app-schemes":
			fmt.Fprint(w, `{"success":true,"data":[{"appSchemeId":3,"description":"pay","oneLink":"https://x.io"}],
				"meta":{"page":0,"size":20,"totalElements":1,"totalPages":1}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"success":false,"message":"not found"}`)
		}
	}))
	t.Cleanup(b.Close)
	return b
}

// run executes the root command against a fresh config pointing at b
func run(t *testing.T, b *backend, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
[api]
base_url = %q

[storage]
journal_path = %q
token_path = %q
`, b.URL, filepath.Join(dir, "journal.db"), filepath.Join(dir, "token"))
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))

	t.Cleanup(func() {
		configPath, baseURL, tokenFlag, logLevel = "", "", "", ""
		queueStatus, queueAll = "", false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", path))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueueCommandPrintsRequests(t *testing.T) {
	out, err := run(t, newBackend(t), "queue", "recommended-questions")
	require.NoError(t, err)
	assert.Contains(t, out, "수정 요청")
	assert.Contains(t, out, "kim")
}

func TestQueueCommandRejectsUnknownResource(t *testing.T) {
	_, err := run(t, newBackend(t), "queue", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource")
}

func TestApproveCommandPostsIDs(t *testing.T) {
	b := newBackend(t)
	out, err := run(t, b, "approve", "recommended-questions", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "1 request(s) approved: 5")
	assert.Equal(t, []string{"/api/v1/recommended-questions/approval-queue"}, b.posts)
}

func TestApproveUnknownRequestFailsBeforePosting(t *testing.T) {
	b := newBackend(t)
	_, err := run(t, b, "approve", "recommended-questions", "77")
	require.Error(t, err)
	assert.Empty(t, b.posts)
}

func TestRowsList(t *testing.T) {
	out, err := run(t, newBackend(t), "rows", "list", "app-schemes")
	require.NoError(t, err)
	assert.Contains(t, out, "pay")
	assert.Contains(t, out, "page 1/1, 1 total")
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter([]string{"status=in_service", "service_nm=ai_calc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "in_service", "service_nm": "ai_calc"}, f)

	_, err = parseFilter([]string{"nope"})
	assert.Error(t, err)

	f, err = parseFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestReadRowsAcceptsYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "rows.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("- oneLink: https://a.io\n  description: a\n"), 0644))
	jsn := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(jsn, []byte(`[{"oneLink":"https://b.io"}]`), 0644))

	rows, err := readRows(yml)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].String("description"))

	rows, err = readRows(jsn)
	require.NoError(t, err)
	assert.Equal(t, "https://b.io", rows[0].String("oneLink"))
}

func TestRenderTableIncludesHeadersAndCells(t *testing.T) {
	s := renderTable([]string{"Name", "Value"}, [][]string{{"a", "1"}, {"b", "2"}})
	for _, want := range []string{"Name", "Value", "a", "2"} {
		assert.Contains(t, s, want)
	}
}
