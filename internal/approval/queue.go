package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"refdesk/internal/eventbus"
)

// ErrInFlight is returned when a mutation for the same queue is already running
var ErrInFlight = errors.New("approval action already in progress")

// Submission is the body posted to create a change request
type Submission struct {
	RequestKind    Kind   `json:"requestKind"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
	ApprovalStatus Status `json:"approvalStatus"`
	TargetType     string `json:"targetType"`
	TargetID       string `json:"targetId"`
	IsRetracted    int    `json:"isRetracted"`
	List           []any  `json:"list"`
}

// Backend is the remote approval queue
type Backend interface {
	ListApprovals(ctx context.Context, resource string, filter map[string]string) ([]Request, error)
	ApproveRequests(ctx context.Context, resource string, ids []string) error
	RetractRequests(ctx context.Context, resource string, ids []string) error
	SubmitRequest(ctx context.Context, resource string, sub Submission) error
}

// Recorder keeps a local trail of submissions and decisions
type Recorder interface {
	RecordSubmission(ctx context.Context, resource string, r *Request) error
	RecordDecision(ctx context.Context, resource, action string, ids []string) error
}

// Queue is the client side of the approval workflow for every resource
type Queue struct {
	backend  Backend
	bus      eventbus.EventBus
	recorder Recorder
	log      *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	items    map[string][]Request
	inFlight map[string]bool
}

// QueueOption configures a Queue
type QueueOption func(*Queue)

// WithRecorder attaches a local journal
func WithRecorder(r Recorder) QueueOption {
	return func(q *Queue) { q.recorder = r }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) QueueOption {
	return func(q *Queue) { q.log = l }
}

// NewQueue creates a queue service. bus may be nil.
func NewQueue(backend Backend, bus eventbus.EventBus, opts ...QueueOption) *Queue {
	q := &Queue{
		backend:  backend,
		bus:      bus,
		log:      zap.NewNop(),
		now:      time.Now,
		items:    make(map[string][]Request),
		inFlight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Load fetches the queue of one resource and caches it
func (q *Queue) Load(ctx context.Context, resource string, filter map[string]string) ([]Request, error) {
	reqs, err := q.backend.ListApprovals(ctx, resource, filter)
	if err != nil {
		q.publishError(fmt.Sprintf("failed to load %s approval queue", resource), err)
		return nil, err
	}
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			q.log.Warn("inconsistent approval request from backend",
				zap.String("resource", resource), zap.String("id", reqs[i].ID.String()), zap.Error(err))
		}
		if reqs[i].No == 0 {
			reqs[i].No = i + 1
		}
	}

	q.mu.Lock()
	q.items[resource] = reqs
	q.mu.Unlock()

	if q.bus != nil {
		q.bus.Publish(eventbus.QueueLoadedEvent{Resource: resource, Count: len(reqs), Total: len(reqs)})
	}
	return cloneRequests(reqs), nil
}

// LoadAll fetches several queues concurrently
func (q *Queue) LoadAll(ctx context.Context, resources []string) (map[string][]Request, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([][]Request, len(resources))
	for i, res := range resources {
		g.Go(func() error {
			reqs, err := q.Load(gctx, res, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", res, err)
			}
			results[i] = reqs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string][]Request, len(resources))
	for i, res := range resources {
		out[res] = results[i]
	}
	return out, nil
}

// Items returns the cached queue of a resource
func (q *Queue) Items(resource string) []Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return cloneRequests(q.items[resource])
}

// Find returns a cached request by id
func (q *Queue) Find(resource, id string) (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, r := range q.items[resource] {
		if r.ID.String() == id {
			return r, true
		}
	}
	return Request{}, false
}

// InFlight reports whether a mutation is running for resource
func (q *Queue) InFlight(resource string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight[resource]
}

// Approve sends the selected requests to final approval, then refetches the queue.
func (q *Queue) Approve(ctx context.Context, resource string, ids []string) error {
	return q.mutate(ctx, resource, "approve", ids, (*Request).BeginReview, q.backend.ApproveRequests,
		func() eventbus.DomainEvent { return eventbus.RequestsApprovedEvent{Resource: resource, IDs: ids} })
}

// Retract withdraws the selected requests, then refetches the queue.
func (q *Queue) Retract(ctx context.Context, resource string, ids []string) error {
	return q.mutate(ctx, resource, "retract", ids, (*Request).Retract, q.backend.RetractRequests,
		func() eventbus.DomainEvent { return eventbus.RequestsRetractedEvent{Resource: resource, IDs: ids} })
}

func (q *Queue) mutate(
	ctx context.Context,
	resource, action string,
	ids []string,
	transition func(*Request) error,
	send func(context.Context, string, []string) error,
	event func() eventbus.DomainEvent,
) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no requests selected", ErrInvalidTransition)
	}
	if err := q.check(resource, ids, transition); err != nil {
		return err
	}
	if err := q.begin(resource); err != nil {
		return err
	}
	defer q.end(resource)

	if err := send(ctx, resource, ids); err != nil {
		q.publishError(fmt.Sprintf("failed to %s %s requests", action, resource), err)
		return err
	}
	q.log.Info("approval action sent", zap.String("resource", resource), zap.String("action", action), zap.Strings("ids", ids))

	if q.recorder != nil {
		if err := q.recorder.RecordDecision(ctx, resource, action, ids); err != nil {
			q.log.Warn("failed to journal decision", zap.Error(err))
		}
	}
	if q.bus != nil {
		q.bus.Publish(event())
	}
	if _, err := q.Load(ctx, resource, nil); err != nil {
		return fmt.Errorf("%s succeeded but refresh failed: %w", action, err)
	}
	return nil
}

// check runs the transition on copies so nothing changes locally before the backend agrees
func (q *Queue) check(resource string, ids []string, transition func(*Request) error) error {
	for _, id := range ids {
		r, ok := q.Find(resource, id)
		if !ok {
			return fmt.Errorf("%w: request %s is not in the %s queue", ErrInvalidTransition, id, resource)
		}
		if err := transition(&r); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) begin(resource string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inFlight[resource] {
		return ErrInFlight
	}
	q.inFlight[resource] = true
	return nil
}

func (q *Queue) end(resource string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, resource)
}

// Submit posts a change request for one record
func (q *Queue) Submit(ctx context.Context, resource, label, targetType, targetID string, kind Kind, before, after any, items []any) (*Request, error) {
	req, err := NewRequest(kind, targetType, targetID, before, after, "", q.now())
	if err != nil {
		return nil, err
	}
	sub := Submission{
		RequestKind:    kind,
		Title:          titleFor(kind),
		Content:        label + " " + verbFor(kind),
		CreatedAt:      req.RequestedAt,
		ApprovalStatus: req.Status,
		TargetType:     targetType,
		TargetID:       targetID,
		List:           items,
	}
	if sub.List == nil {
		sub.List = []any{}
	}

	if err := q.begin(resource + "#submit"); err != nil {
		return nil, err
	}
	defer q.end(resource + "#submit")

	if err := q.backend.SubmitRequest(ctx, resource, sub); err != nil {
		q.publishError(fmt.Sprintf("failed to submit %s change request", resource), err)
		return nil, err
	}
	if q.recorder != nil {
		if err := q.recorder.RecordSubmission(ctx, resource, req); err != nil {
			q.log.Warn("failed to journal submission", zap.Error(err))
		}
	}
	if q.bus != nil {
		q.bus.Publish(eventbus.ChangeSubmittedEvent{Resource: resource, Kind: string(kind), TargetID: targetID})
	}
	return req, nil
}

func (q *Queue) publishError(msg string, err error) {
	q.log.Error(msg, zap.Error(err))
	if q.bus != nil {
		q.bus.Publish(eventbus.ErrorEvent{Message: msg, Err: err})
	}
}

func titleFor(k Kind) string {
	switch k {
	case KindCreate:
		return "데이터 등록"
	case KindUpdate:
		return "데이터 수정"
	default:
		return "데이터 삭제"
	}
}

func verbFor(k Kind) string {
	switch k {
	case KindCreate:
		return "등록"
	case KindUpdate:
		return "수정"
	default:
		return "삭제"
	}
}

func cloneRequests(in []Request) []Request {
	if in == nil {
		return nil
	}
	out := make([]Request, len(in))
	copy(out, in)
	return out
}
