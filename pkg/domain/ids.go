package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "parley/pkg/domain-errors"
)

// Identifiers in this package are opaque strings because many of them are
// minted by the peer, not by us. IDs we mint carry a three letter prefix
// followed by a UUID so their origin is obvious in logs.
type (
	RequestID            string
	AttributeID          string
	MessageID            string
	TemplateID           string
	RelationshipChangeID string
)

// Address identifies a party (an account) in the protocol.
type Address string

const maxIDLength = 128

const (
	requestIDPrefix   = "REQ"
	attributeIDPrefix = "ATT"
	messageIDPrefix   = "MSG"
)

// NewRequestID mints a fresh request id.
func NewRequestID() RequestID {
	return RequestID(requestIDPrefix + uuid.NewString())
}

// NewAttributeID mints a fresh attribute id.
func NewAttributeID() AttributeID {
	return AttributeID(attributeIDPrefix + uuid.NewString())
}

// NewMessageID mints an id for an envelope we publish.
func NewMessageID() MessageID {
	return MessageID(messageIDPrefix + uuid.NewString())
}

func ParseRequestID(s string) (RequestID, error) {
	v, err := parseOpaque("request id", s)
	return RequestID(v), err
}

func ParseAttributeID(s string) (AttributeID, error) {
	v, err := parseOpaque("attribute id", s)
	return AttributeID(v), err
}

func ParseAddress(s string) (Address, error) {
	v, err := parseOpaque("address", s)
	return Address(v), err
}

// parseOpaque enforces the shared shape of every identifier: non-empty,
// bounded, valid UTF-8 and free of whitespace or control characters.
func parseOpaque(kind, s string) (string, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be empty")
	}
	if len(s) > maxIDLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" is too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" must be valid UTF-8")
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
	}) >= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, kind+" contains invalid characters")
	}
	return s, nil
}

func (id RequestID) String() string   { return string(id) }
func (id RequestID) IsNil() bool      { return id == "" }
func (id AttributeID) String() string { return string(id) }
func (id AttributeID) IsNil() bool    { return id == "" }
func (a Address) String() string      { return string(a) }
func (a Address) IsNil() bool         { return a == "" }
func (id MessageID) String() string   { return string(id) }
func (id MessageID) IsNil() bool      { return id == "" }
