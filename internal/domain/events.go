package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueueLoaded       EventType = "QueueLoaded"
	EventChangeSubmitted   EventType = "ChangeSubmitted"
	EventRequestsApproved  EventType = "RequestsApproved"
	EventRequestsRetracted EventType = "RequestsRetracted"
	EventLoadingChanged    EventType = "LoadingChanged"
	EventError             EventType = "Error"
	EventConfigLoaded      EventType = "ConfigLoaded"
	EventConfigSaved       EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueueLoadedEvent is emitted when an approval queue has been fetched
type QueueLoadedEvent struct {
	Resource string
	Count    int
	Total    int
}

func (e QueueLoadedEvent) Type() EventType { return EventQueueLoaded }

// ChangeSubmittedEvent is emitted when a change request was posted for a row
type ChangeSubmittedEvent struct {
	Resource string
	Kind     string
	TargetID string
}

func (e ChangeSubmittedEvent) Type() EventType { return EventChangeSubmitted }

// RequestsApprovedEvent is emitted after a bulk final approval succeeded
type RequestsApprovedEvent struct {
	Resource string
	IDs      []string
}

func (e RequestsApprovedEvent) Type() EventType { return EventRequestsApproved }

// RequestsRetractedEvent is emitted after the requester withdrew requests
type RequestsRetractedEvent struct {
	Resource string
	IDs      []string
}

func (e RequestsRetractedEvent) Type() EventType { return EventRequestsRetracted }

// LoadingChangedEvent is emitted when the global loading indicator flips
type LoadingChangedEvent struct {
	Loading bool
	Pending int
}

func (e LoadingChangedEvent) Type() EventType { return EventLoadingChanged }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path    string
	BaseURL string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
