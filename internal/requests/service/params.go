package service

import (
	"parley/internal/requests/models"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
)

// CreateOutgoingParameters describe a request we want to send to Peer.
type CreateOutgoingParameters struct {
	Content models.RequestContent `json:"content"`
	Peer    id.Address            `json:"peer"`
}

func (p CreateOutgoingParameters) Validate() error {
	if p.Peer.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "peer is required")
	}
	if len(p.Content.Items) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "content must have at least one item")
	}
	return nil
}

// SentParameters record the transport object that carried our request.
// Author is the creator of that object and must be us.
type SentParameters struct {
	RequestID id.RequestID         `json:"requestId"`
	Source    models.RequestSource `json:"source"`
	Author    id.Address           `json:"author"`
}

func (p SentParameters) Validate() error {
	if p.RequestID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "requestId is required")
	}
	if !p.Source.Type.IsValid() || p.Source.Reference == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "source must be a Message or RelationshipTemplate with a reference")
	}
	return nil
}

// CompleteOutgoingParameters carry the peer's response. Sender, when set,
// must be the request's peer.
type CompleteOutgoingParameters struct {
	Response models.ResponseContent `json:"response"`
	Source   models.ResponseSource  `json:"source"`
	Sender   id.Address             `json:"sender,omitempty"`
}

func (p CompleteOutgoingParameters) Validate() error {
	if p.Response.RequestID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "response.requestId is required")
	}
	if p.Response.Result != models.ResponseAccepted && p.Response.Result != models.ResponseRejected {
		return dErrors.New(dErrors.CodeInvalidInput, "response.result must be Accepted or Rejected")
	}
	if !p.Source.Type.IsValid() || p.Source.Reference == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "source must be a Message or RelationshipChange with a reference")
	}
	return nil
}

// ReceivedParameters carry a request a peer sent us. Sender is the creator
// of the carrying Message or RelationshipTemplate.
type ReceivedParameters struct {
	Content models.RequestContent `json:"content"`
	Source  models.RequestSource  `json:"source"`
	Sender  id.Address            `json:"sender"`
}

func (p ReceivedParameters) Validate() error {
	if p.Sender.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "sender is required")
	}
	if !p.Source.Type.IsValid() || p.Source.Reference == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "source must be a Message or RelationshipTemplate with a reference")
	}
	if len(p.Content.Items) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "content must have at least one item")
	}
	return nil
}

// CompleteIncomingParameters mark our response as delivered. Source is the
// carrier of the response when known.
type CompleteIncomingParameters struct {
	RequestID id.RequestID           `json:"requestId"`
	Source    *models.ResponseSource `json:"source,omitempty"`
}

func (p CompleteIncomingParameters) Validate() error {
	if p.RequestID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "requestId is required")
	}
	if p.Source != nil && (!p.Source.Type.IsValid() || p.Source.Reference == "") {
		return dErrors.New(dErrors.CodeInvalidInput, "source must be a Message or RelationshipChange with a reference")
	}
	return nil
}

// FailParameters park a request in Error.
type FailParameters struct {
	Reason string `json:"reason"`
}

func (p FailParameters) Validate() error {
	if p.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	return nil
}

// ItemPrerequisite reports one leaf's prerequisite check.
type ItemPrerequisite struct {
	Path      string `json:"path"`
	ItemType  string `json:"itemType"`
	Fulfilled bool   `json:"fulfilled"`
}

// PrerequisitesReport is the outcome of CheckPrerequisites.
type PrerequisitesReport struct {
	RequestID id.RequestID       `json:"requestId"`
	Fulfilled bool               `json:"fulfilled"`
	Items     []ItemPrerequisite `json:"items"`
}
