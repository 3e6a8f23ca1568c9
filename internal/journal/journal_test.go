package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refdesk/internal/approval"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestRecordAndList(t *testing.T) {
	m := newTestManager(t)
	fixed := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }
	ctx := context.Background()

	req, err := approval.NewRequest(approval.KindUpdate, "app_scheme", "7",
		map[string]any{"oneLink": "a"}, map[string]any{"oneLink": "b"}, "", fixed)
	require.NoError(t, err)

	require.NoError(t, m.RecordSubmission(ctx, "app-schemes", req))
	require.NoError(t, m.RecordDecision(ctx, "app-schemes", "approve", []string{"1", "2"}))
	require.NoError(t, m.RecordDecision(ctx, "recommended-questions", "retract", []string{"9"}))

	all, err := m.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "retract", all[0].Action, "newest first")

	schemes, err := m.List(ctx, "app-schemes", 10)
	require.NoError(t, err)
	require.Len(t, schemes, 2)

	decision := schemes[0]
	assert.Equal(t, []string{"1", "2"}, decision.RequestIDs)
	assert.True(t, fixed.Equal(decision.Timestamp))

	sub := schemes[1]
	assert.Equal(t, "submit", sub.Action)
	assert.Equal(t, "UPDATE", sub.Kind)
	assert.Equal(t, "7", sub.TargetID)
	assert.Empty(t, sub.RequestIDs)
	assert.JSONEq(t, `{"oneLink":"b"}`, sub.PayloadAfter)
}

func TestListLimit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, m.RecordDecision(ctx, "app-schemes", "approve", []string{"x"}))
	}
	got, err := m.List(ctx, "app-schemes", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestManagerSatisfiesRecorder(t *testing.T) {
	var _ approval.Recorder = newTestManager(t)
}
