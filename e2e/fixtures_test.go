//go:build e2e && unix

package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakeBackend serves the API routes the console touches
type fakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	approved []string
}

const questionRows = `{"success":true,"code":"OK","data":[
 {"qst_id":"1","service_nm":"ai_search","qst_ctgr":"ai_search_promo","display_ctnt":"e2e first question","under_17_yn":"Y","imp_start_date":"20250301090000","imp_end_date":"20251231235959","status":"in_service"},
 {"qst_id":"2","service_nm":"ai_calc","qst_ctgr":"ai_calc_save","display_ctnt":"e2e second question","under_17_yn":"N","imp_start_date":"20250301090000","imp_end_date":"20251231235959","status":"in_service"}
],"meta":{"page":0,"size":20,"totalElements":2,"totalPages":1}}`

const approvalQueue = `{"success":true,"data":[
 {"approvalRequestId":"41","targetType":"recommended_question","targetId":"2","requestKind":"UPDATE","approvalStatus":"update_requested",
  "payloadBefore":"{\"display_ctnt\":\"old\"}","payloadAfter":"{\"display_ctnt\":\"new\"}","requesterName":"tester","requestedAt":"20250301090000","isRetracted":false}
]}`

// CreateTestWorkspace creates an isolated home directory and starts the fake backend
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	if tf.backend == nil {
		tf.backend = newFakeBackend()
	}
	return tmpDir, nil
}

func newFakeBackend() *fakeBackend {
	fb := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/recommended-questions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, questionRows)
	})
	mux.HandleFunc("GET /api/v1/recommended-questions/approval-queue", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, approvalQueue)
	})
	mux.HandleFunc("POST /api/v1/recommended-questions/approval-queue", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.approved = append(fb.approved, strings.TrimSpace(string(body)))
		fb.mu.Unlock()
		io.WriteString(w, `{"success":true}`)
	})
	mux.HandleFunc("GET /api/v1/common-codes/mappings/qst-categories", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":[]}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"success":false,"code":"NOT_FOUND","message":"no route %s %s"}`, r.Method, r.URL.Path)
	})
	fb.Server = httptest.NewServer(mux)
	return fb
}

// Approved returns the bodies of the approval posts seen so far
func (fb *fakeBackend) Approved() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]string(nil), fb.approved...)
}
