package approval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refdesk/internal/eventbus"
)

type fakeBackend struct {
	mu        sync.Mutex
	queues    map[string][]Request
	approved  [][]string
	retracted [][]string
	submitted []Submission
	listErr   error
	sendErr   error
	block     chan struct{}
}

func (b *fakeBackend) ListApprovals(_ context.Context, resource string, _ map[string]string) ([]Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	return cloneRequests(b.queues[resource]), nil
}

func (b *fakeBackend) ApproveRequests(_ context.Context, resource string, ids []string) error {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.approved = append(b.approved, ids)
	for i := range b.queues[resource] {
		for _, id := range ids {
			if b.queues[resource][i].ID.String() == id {
				b.queues[resource][i].Status = StatusInReview
			}
		}
	}
	return nil
}

func (b *fakeBackend) RetractRequests(_ context.Context, resource string, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.retracted = append(b.retracted, ids)
	for i := range b.queues[resource] {
		for _, id := range ids {
			if b.queues[resource][i].ID.String() == id {
				b.queues[resource][i].Retracted = true
			}
		}
	}
	return nil
}

func (b *fakeBackend) SubmitRequest(_ context.Context, _ string, sub Submission) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return b.sendErr
	}
	b.submitted = append(b.submitted, sub)
	return nil
}

type fakeRecorder struct {
	submissions []*Request
	decisions   []string
}

func (r *fakeRecorder) RecordSubmission(_ context.Context, _ string, req *Request) error {
	r.submissions = append(r.submissions, req)
	return nil
}

func (r *fakeRecorder) RecordDecision(_ context.Context, _ string, action string, _ []string) error {
	r.decisions = append(r.decisions, action)
	return nil
}

func sampleBackend() *fakeBackend {
	return &fakeBackend{queues: map[string][]Request{
		"app-schemes": {
			{ID: "1", Kind: KindCreate, Status: StatusCreateRequested},
			{ID: "2", Kind: KindUpdate, Status: StatusUpdateRequested},
			{ID: "3", Kind: KindDelete, Status: StatusInReview},
		},
		"recommended-questions": {
			{ID: "10", Kind: KindUpdate, Status: StatusUpdateRequested},
		},
	}}
}

func TestLoadCachesAndNumbers(t *testing.T) {
	q := NewQueue(sampleBackend(), nil)
	reqs, err := q.Load(context.Background(), "app-schemes", nil)
	require.NoError(t, err)
	assert.Len(t, reqs, 3)
	assert.Equal(t, 1, reqs[0].No)
	assert.Equal(t, 3, reqs[2].No)

	r, ok := q.Find("app-schemes", "2")
	assert.True(t, ok)
	assert.Equal(t, KindUpdate, r.Kind)
}

func TestLoadAllFetchesEveryQueue(t *testing.T) {
	q := NewQueue(sampleBackend(), nil)
	all, err := q.LoadAll(context.Background(), []string{"app-schemes", "recommended-questions"})
	require.NoError(t, err)
	assert.Len(t, all["app-schemes"], 3)
	assert.Len(t, all["recommended-questions"], 1)
}

func TestLoadAllReportsFailure(t *testing.T) {
	b := sampleBackend()
	b.listErr = errors.New("503")
	q := NewQueue(b, nil)
	_, err := q.LoadAll(context.Background(), []string{"app-schemes"})
	assert.ErrorContains(t, err, "app-schemes")
}

func TestApproveSendsRecordsAndRefetches(t *testing.T) {
	b := sampleBackend()
	bus := eventbus.New(nil)
	defer bus.Close()
	got := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventRequestsApproved, func(e eventbus.DomainEvent) { got <- e })

	rec := &fakeRecorder{}
	q := NewQueue(b, bus, WithRecorder(rec))
	_, err := q.Load(context.Background(), "app-schemes", nil)
	require.NoError(t, err)

	require.NoError(t, q.Approve(context.Background(), "app-schemes", []string{"1", "2"}))
	assert.Equal(t, [][]string{{"1", "2"}}, b.approved)
	assert.Equal(t, []string{"approve"}, rec.decisions)

	r, _ := q.Find("app-schemes", "1")
	assert.Equal(t, StatusInReview, r.Status, "cache reflects the refetch")

	select {
	case e := <-got:
		assert.Equal(t, []string{"1", "2"}, e.(eventbus.RequestsApprovedEvent).IDs)
	case <-time.After(time.Second):
		t.Fatal("approved event not published")
	}
}

func TestApproveRejectsNonRequestedItems(t *testing.T) {
	b := sampleBackend()
	q := NewQueue(b, nil)
	_, _ = q.Load(context.Background(), "app-schemes", nil)

	err := q.Approve(context.Background(), "app-schemes", []string{"1", "3"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, b.approved, "nothing is sent when one item is invalid")

	err = q.Approve(context.Background(), "app-schemes", []string{"99"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = q.Approve(context.Background(), "app-schemes", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRetractOnlyFromRequested(t *testing.T) {
	b := sampleBackend()
	q := NewQueue(b, nil)
	_, _ = q.Load(context.Background(), "app-schemes", nil)

	require.NoError(t, q.Retract(context.Background(), "app-schemes", []string{"2"}))
	r, _ := q.Find("app-schemes", "2")
	assert.True(t, bool(r.Retracted))

	assert.ErrorIs(t, q.Retract(context.Background(), "app-schemes", []string{"2"}), ErrInvalidTransition)
	assert.ErrorIs(t, q.Retract(context.Background(), "app-schemes", []string{"3"}), ErrInvalidTransition)
}

func TestSecondSubmissionWhileInFlightIsRejected(t *testing.T) {
	b := sampleBackend()
	b.block = make(chan struct{})
	q := NewQueue(b, nil)
	_, _ = q.Load(context.Background(), "app-schemes", nil)

	done := make(chan error, 1)
	go func() { done <- q.Approve(context.Background(), "app-schemes", []string{"1"}) }()

	require.Eventually(t, func() bool { return q.InFlight("app-schemes") }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, q.Approve(context.Background(), "app-schemes", []string{"2"}), ErrInFlight)

	close(b.block)
	require.NoError(t, <-done)
	assert.False(t, q.InFlight("app-schemes"))
}

func TestBackendFailurePublishesError(t *testing.T) {
	b := sampleBackend()
	bus := eventbus.New(nil)
	defer bus.Close()
	got := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) { got <- e })

	q := NewQueue(b, bus)
	_, _ = q.Load(context.Background(), "app-schemes", nil)
	b.sendErr = errors.New("500")

	assert.Error(t, q.Approve(context.Background(), "app-schemes", []string{"1"}))
	assert.False(t, q.InFlight("app-schemes"))

	select {
	case e := <-got:
		assert.Contains(t, e.(eventbus.ErrorEvent).Message, "approve")
	case <-time.After(time.Second):
		t.Fatal("error event not published")
	}
}

func TestSubmitBuildsChangeRequest(t *testing.T) {
	b := sampleBackend()
	rec := &fakeRecorder{}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := NewQueue(b, nil, WithRecorder(rec), WithClock(func() time.Time { return now }))

	before := map[string]any{"productMenuName": "old"}
	after := map[string]any{"productMenuName": "new"}
	req, err := q.Submit(context.Background(), "app-schemes", "앱 스킴", "app_scheme", "7", KindUpdate, before, after, []any{after})
	require.NoError(t, err)

	assert.Equal(t, StatusUpdateRequested, req.Status)
	require.Len(t, b.submitted, 1)
	sub := b.submitted[0]
	assert.Equal(t, "데이터 수정", sub.Title)
	assert.Equal(t, "앱 스킴 수정", sub.Content)
	assert.Equal(t, "20260102030405", sub.CreatedAt)
	assert.Equal(t, StatusUpdateRequested, sub.ApprovalStatus)
	assert.Equal(t, "7", sub.TargetID)
	assert.Len(t, rec.submissions, 1)
	assert.JSONEq(t, `{"productMenuName":"old"}`, rec.submissions[0].PayloadBefore)
}
