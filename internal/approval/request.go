// Package approval models change requests that gate writes to reference data.
package approval

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the requested change
type Kind string

const (
	KindCreate Kind = "CREATE"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// Status is the workflow position of a request
type Status string

const (
	StatusCreateRequested Status = "create_requested"
	StatusUpdateRequested Status = "update_requested"
	StatusDeleteRequested Status = "delete_requested"
	StatusInReview        Status = "in_review"
	StatusDoneReview      Status = "done_review"
)

var (
	ErrInvalidTransition = errors.New("invalid approval transition")
	ErrInvalidRequest    = errors.New("invalid approval request")
)

// RequestedStatusFor returns the initial status of a request of kind k
func RequestedStatusFor(k Kind) (Status, error) {
	switch k {
	case KindCreate:
		return StatusCreateRequested, nil
	case KindUpdate:
		return StatusUpdateRequested, nil
	case KindDelete:
		return StatusDeleteRequested, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, k)
}

// IsRequested reports whether s is one of the *_requested states
func (s Status) IsRequested() bool {
	return s == StatusCreateRequested || s == StatusUpdateRequested || s == StatusDeleteRequested
}

func (s Status) valid() bool {
	return s.IsRequested() || s == StatusInReview || s == StatusDoneReview
}

// rank orders statuses along the workflow; requested states share a rank
func (s Status) rank() int {
	switch {
	case s.IsRequested():
		return 0
	case s == StatusInReview:
		return 1
	case s == StatusDoneReview:
		return 2
	}
	return -1
}

// Label is the display name of a status
func (s Status) Label() string {
	switch s {
	case StatusCreateRequested:
		return "등록 요청"
	case StatusUpdateRequested:
		return "수정 요청"
	case StatusDeleteRequested:
		return "삭제 요청"
	case StatusInReview:
		return "결재 진행"
	case StatusDoneReview:
		return "결재 완료"
	}
	return string(s)
}

// Request is one approval request
type Request struct {
	ID            FlexString `json:"approvalRequestId"`
	No            int        `json:"no,omitempty"`
	TargetType    string     `json:"targetType"`
	TargetID      FlexString `json:"targetId"`
	ItsvcNo       string     `json:"itsvcNo,omitempty"`
	Kind          Kind       `json:"requestKind"`
	Status        Status     `json:"approvalStatus"`
	PayloadBefore string     `json:"payloadBefore,omitempty"`
	PayloadAfter  string     `json:"payloadAfter,omitempty"`
	RequesterName string     `json:"requesterName,omitempty"`
	RequesterDept string     `json:"requesterDeptName,omitempty"`
	LastActorName string     `json:"lastActorName,omitempty"`
	RequestedAt   string     `json:"requestedAt,omitempty"`
	LastUpdatedAt string     `json:"lastUpdatedAt,omitempty"`
	Retracted     FlexBool   `json:"isRetracted"`
	Applied       FlexBool   `json:"isApplied"`
	AppliedAt     string     `json:"appliedAt,omitempty"`
}

// NewRequest builds a request in its initial *_requested state
func NewRequest(kind Kind, targetType, targetID string, before, after any, requester string, now time.Time) (*Request, error) {
	status, err := RequestedStatusFor(kind)
	if err != nil {
		return nil, err
	}
	r := &Request{
		TargetType:    targetType,
		TargetID:      FlexString(targetID),
		Kind:          kind,
		Status:        status,
		RequesterName: requester,
		RequestedAt:   now.Format(TimestampLayout),
		LastUpdatedAt: now.Format(TimestampLayout),
	}
	if r.PayloadBefore, err = encodePayload(before); err != nil {
		return nil, err
	}
	if r.PayloadAfter, err = encodePayload(after); err != nil {
		return nil, err
	}
	return r, nil
}

// TimestampLayout is the storage format for request timestamps
const TimestampLayout = "20060102150405"

// Validate checks the request invariants
func (r *Request) Validate() error {
	switch r.Kind {
	case KindCreate, KindUpdate, KindDelete:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}
	if !r.Status.valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, r.Status)
	}
	if bool(r.Applied) && r.Status != StatusDoneReview {
		return fmt.Errorf("%w: applied request must be done_review, got %s", ErrInvalidRequest, r.Status)
	}
	if bool(r.Retracted) && !r.Status.IsRequested() {
		return fmt.Errorf("%w: retracted request must still be requested, got %s", ErrInvalidRequest, r.Status)
	}
	return nil
}

// CanRetract reports whether the requester may still withdraw r
func (r *Request) CanRetract() bool {
	return r.Status.IsRequested() && !bool(r.Retracted)
}

// CanApprove reports whether r may be sent to final approval
func (r *Request) CanApprove() bool {
	return r.Status.IsRequested() && !bool(r.Retracted)
}

// Retract withdraws the request
func (r *Request) Retract() error {
	if !r.CanRetract() {
		return fmt.Errorf("%w: cannot retract request %s in %s (retracted=%v)", ErrInvalidTransition, r.ID, r.Status, bool(r.Retracted))
	}
	r.Retracted = true
	return nil
}

// BeginReview moves a requested item into review
func (r *Request) BeginReview() error {
	if !r.CanApprove() {
		return fmt.Errorf("%w: cannot review request %s in %s", ErrInvalidTransition, r.ID, r.Status)
	}
	r.Status = StatusInReview
	return nil
}

// Observe applies backend state fetched for the same request. Status never moves
// backwards and the incoming state must itself be valid.
func (r *Request) Observe(next Request) error {
	if next.ID != r.ID {
		return fmt.Errorf("%w: observed request %s for %s", ErrInvalidRequest, next.ID, r.ID)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if next.Status.rank() < r.Status.rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, next.Status)
	}
	if bool(r.Applied) && !bool(next.Applied) {
		return fmt.Errorf("%w: applied flag cannot be cleared", ErrInvalidTransition)
	}
	*r = next
	return nil
}

func encodePayload(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(b), nil
}

// FlexString accepts JSON strings and numbers
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexBool accepts JSON booleans and 0/1 numbers
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	switch s {
	case "null", "", "false", "0", "N":
		*f = false
		return nil
	case "true", "1", "Y":
		*f = true
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("flex bool: cannot parse %q", s)
	}
	*f = n != 0
	return nil
}
