package models

import (
	"slices"
	"time"

	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
)

// RequestContent is what the initiator sends.
type RequestContent struct {
	ID          id.RequestID   `json:"id,omitempty"`
	ExpiresAt   *time.Time     `json:"expiresAt,omitempty"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Items       []RequestEntry `json:"items"`
}

// CountLeaves returns the number of leaf items across entries and groups.
func (c RequestContent) CountLeaves() int {
	n := 0
	_ = WalkItems(c.Items, func(RequestItem) error {
		n++
		return nil
	})
	return n
}

type RequestSourceType string

const (
	RequestSourceMessage              RequestSourceType = "Message"
	RequestSourceRelationshipTemplate RequestSourceType = "RelationshipTemplate"
)

func (t RequestSourceType) IsValid() bool {
	return t == RequestSourceMessage || t == RequestSourceRelationshipTemplate
}

// RequestSource names the transport object that carried the request.
type RequestSource struct {
	Type      RequestSourceType `json:"type"`
	Reference string            `json:"reference"`
}

type ResponseResult string

const (
	ResponseAccepted ResponseResult = "Accepted"
	ResponseRejected ResponseResult = "Rejected"
)

type ResponseContent struct {
	Result    ResponseResult  `json:"result"`
	RequestID id.RequestID    `json:"requestId"`
	Items     []ResponseEntry `json:"items"`
}

type ResponseSourceType string

const (
	ResponseSourceMessage            ResponseSourceType = "Message"
	ResponseSourceRelationshipChange ResponseSourceType = "RelationshipChange"
)

func (t ResponseSourceType) IsValid() bool {
	return t == ResponseSourceMessage || t == ResponseSourceRelationshipChange
}

type ResponseSource struct {
	Type      ResponseSourceType `json:"type"`
	Reference string             `json:"reference"`
}

// Response is the decider's answer as stored on the request.
type Response struct {
	CreatedAt time.Time       `json:"createdAt"`
	Content   ResponseContent `json:"content"`
	Source    *ResponseSource `json:"source,omitempty"`
}

// StatusLogEntry records one transition.
type StatusLogEntry struct {
	CreatedAt time.Time `json:"createdAt"`
	OldStatus Status    `json:"oldStatus"`
	NewStatus Status    `json:"newStatus"`
}

// Request is the aggregate both roles persist.
//
// Invariants:
//   - Status only changes through the Apply* methods, each requiring the exact prior status
//   - StatusLog is append-only and its NewStatus values have non-decreasing rank
//   - Response, once set, is never replaced
//   - IsOwn requests never reach Decided or Answered; peer requests never reach Draft or Completed
type Request struct {
	ID          id.RequestID     `json:"id"`
	IsOwn       bool             `json:"isOwn"`
	Peer        id.Address       `json:"peer"`
	CreatedAt   time.Time        `json:"createdAt"`
	Content     RequestContent   `json:"content"`
	Source      *RequestSource   `json:"source,omitempty"`
	Response    *Response        `json:"response,omitempty"`
	Status      Status           `json:"status"`
	StatusLog   []StatusLogEntry `json:"statusLog"`
	ErrorReason string           `json:"errorReason,omitempty"`
}

// NewOutgoingRequest builds a Draft request we initiate.
func NewOutgoingRequest(content RequestContent, peer id.Address, now time.Time) (*Request, error) {
	if peer.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "peer is required")
	}
	if len(content.Items) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request needs at least one item")
	}
	if content.ID.IsNil() {
		content.ID = id.NewRequestID()
	}
	return &Request{
		ID:        content.ID,
		IsOwn:     true,
		Peer:      peer,
		CreatedAt: now,
		Content:   content,
		Status:    StatusDraft,
		StatusLog: []StatusLogEntry{},
	}, nil
}

// NewIncomingRequest builds an Open request received from peer.
func NewIncomingRequest(content RequestContent, peer id.Address, source RequestSource, now time.Time) (*Request, error) {
	if peer.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "peer is required")
	}
	if !source.Type.IsValid() || source.Reference == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request source must be a Message or RelationshipTemplate with a reference")
	}
	if len(content.Items) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "request needs at least one item")
	}
	if content.ID.IsNil() {
		content.ID = id.NewRequestID()
	}
	return &Request{
		ID:        content.ID,
		IsOwn:     false,
		Peer:      peer,
		CreatedAt: now,
		Content:   content,
		Source:    &source,
		Status:    StatusOpen,
		StatusLog: []StatusLogEntry{},
	}, nil
}

// CanTransitionTo checks next against the current status.
func (r *Request) CanTransitionTo(next Status) error {
	if !r.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvalidState, "request %s is %s and cannot become %s", r.ID, r.Status, next)
	}
	return nil
}

func (r *Request) applyStatus(next Status, now time.Time) {
	r.StatusLog = append(r.StatusLog, StatusLogEntry{CreatedAt: now, OldStatus: r.Status, NewStatus: next})
	r.Status = next
}

// CanSend checks Draft -> Open for an own request.
func (r *Request) CanSend() error {
	if !r.IsOwn {
		return dErrors.New(dErrors.CodeInvalidState, "only own requests can be sent")
	}
	return r.CanTransitionTo(StatusOpen)
}

// ApplySent records the carrier and opens the request.
// Must only be called after CanSend returns nil.
func (r *Request) ApplySent(source RequestSource, now time.Time) {
	r.Source = &source
	r.applyStatus(StatusOpen, now)
}

// CanDecide checks Open -> Decided for a peer request.
func (r *Request) CanDecide() error {
	if r.IsOwn {
		return dErrors.New(dErrors.CodeInvalidState, "own requests cannot be decided")
	}
	return r.CanTransitionTo(StatusDecided)
}

// ApplyDecided stores the built response and marks the request decided.
// Must only be called after CanDecide returns nil.
func (r *Request) ApplyDecided(response Response, now time.Time) {
	r.Response = &response
	r.applyStatus(StatusDecided, now)
}

// CanAnswer checks Decided -> Answered for a peer request.
func (r *Request) CanAnswer() error {
	if r.IsOwn {
		return dErrors.New(dErrors.CodeInvalidState, "own requests cannot be answered")
	}
	return r.CanTransitionTo(StatusAnswered)
}

// ApplyAnswered records how the response left. source may be nil.
// Must only be called after CanAnswer returns nil.
func (r *Request) ApplyAnswered(source *ResponseSource, now time.Time) {
	if source != nil && r.Response != nil {
		s := *source
		r.Response.Source = &s
	}
	r.applyStatus(StatusAnswered, now)
}

// CanComplete checks Open -> Completed for an own request.
func (r *Request) CanComplete() error {
	if !r.IsOwn {
		return dErrors.New(dErrors.CodeInvalidState, "only own requests can be completed with a response")
	}
	return r.CanTransitionTo(StatusCompleted)
}

// ApplyCompleted stores the peer's response and completes the request.
// Must only be called after CanComplete returns nil.
func (r *Request) ApplyCompleted(response Response, now time.Time) {
	r.Response = &response
	r.applyStatus(StatusCompleted, now)
}

func (r *Request) CanFail() error {
	return r.CanTransitionTo(StatusError)
}

// ApplyFailed parks the request in Error with reason.
// Must only be called after CanFail returns nil.
func (r *Request) ApplyFailed(reason string, now time.Time) {
	r.ErrorReason = reason
	r.applyStatus(StatusError, now)
}

// IsExpired reports whether the content carries an expiry before now.
func (r *Request) IsExpired(now time.Time) bool {
	return r.Content.ExpiresAt != nil && r.Content.ExpiresAt.Before(now)
}

// Direction labels the role for logs and metrics.
func (r *Request) Direction() string {
	if r.IsOwn {
		return "outgoing"
	}
	return "incoming"
}

// Query filters stored requests. Zero values do not constrain.
type Query struct {
	IsOwn         *bool
	Peer          id.Address
	Statuses      []Status
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
}

func (q Query) Matches(r *Request) bool {
	if q.IsOwn != nil && r.IsOwn != *q.IsOwn {
		return false
	}
	if q.Peer != "" && r.Peer != q.Peer {
		return false
	}
	if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, r.Status) {
		return false
	}
	if q.CreatedAfter != nil && !r.CreatedAt.After(*q.CreatedAfter) {
		return false
	}
	if q.CreatedBefore != nil && !r.CreatedAt.Before(*q.CreatedBefore) {
		return false
	}
	return true
}

// Clone copies the request structure. Item values are treated as immutable
// and shared.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	out.Content.Items = cloneRequestEntries(r.Content.Items)
	out.StatusLog = slices.Clone(r.StatusLog)
	if r.Content.ExpiresAt != nil {
		t := *r.Content.ExpiresAt
		out.Content.ExpiresAt = &t
	}
	if r.Source != nil {
		s := *r.Source
		out.Source = &s
	}
	if r.Response != nil {
		resp := *r.Response
		resp.Content.Items = cloneResponseEntries(r.Response.Content.Items)
		if r.Response.Source != nil {
			s := *r.Response.Source
			resp.Source = &s
		}
		out.Response = &resp
	}
	return &out
}

func cloneRequestEntries(entries []RequestEntry) []RequestEntry {
	if entries == nil {
		return nil
	}
	out := make([]RequestEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.Group != nil {
			g := *e.Group
			g.Items = slices.Clone(e.Group.Items)
			out[i].Group = &g
		}
	}
	return out
}

func cloneResponseEntries(entries []ResponseEntry) []ResponseEntry {
	if entries == nil {
		return nil
	}
	out := make([]ResponseEntry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.Group != nil {
			g := ResponseItemGroup{Items: slices.Clone(e.Group.Items)}
			out[i].Group = &g
		}
	}
	return out
}
