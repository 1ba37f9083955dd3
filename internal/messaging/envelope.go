// Package messaging carries requests and responses between parties as
// envelopes on a shared Kafka topic. Every node reads the topic and keeps
// the envelopes addressed to it.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"parley/internal/requests/models"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
)

type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
)

// Envelope is the wire unit. Exactly one of Request and Response is set,
// matching Kind. ID doubles as the Message reference recorded as the
// request or response source.
type Envelope struct {
	ID       id.MessageID            `json:"id"`
	Kind     Kind                    `json:"kind"`
	From     id.Address              `json:"from"`
	To       id.Address              `json:"to"`
	SentAt   time.Time               `json:"sentAt"`
	Request  *models.RequestContent  `json:"request,omitempty"`
	Response *models.ResponseContent `json:"response,omitempty"`
}

func (e Envelope) Validate() error {
	if e.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "envelope id is required")
	}
	if e.From.IsNil() || e.To.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "envelope needs both from and to")
	}
	switch e.Kind {
	case KindRequest:
		if e.Request == nil || e.Response != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "request envelope must carry only a request")
		}
	case KindResponse:
		if e.Response == nil || e.Request != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "response envelope must carry only a response")
		}
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown envelope kind %q", e.Kind)
	}
	return nil
}

func Encode(e Envelope) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
