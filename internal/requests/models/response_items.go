package models

import (
	"encoding/json"

	attrmodels "parley/internal/attributes/models"
	id "parley/pkg/domain"
)

const (
	TypeAcceptResponseItem                 = "AcceptResponseItem"
	TypeRejectResponseItem                 = "RejectResponseItem"
	TypeCreateAttributeAcceptResponseItem  = "CreateAttributeAcceptResponseItem"
	TypeReadAttributeAcceptResponseItem    = "ReadAttributeAcceptResponseItem"
	TypeProposeAttributeAcceptResponseItem = "ProposeAttributeAcceptResponseItem"
	TypeShareAttributeAcceptResponseItem   = "ShareAttributeAcceptResponseItem"
	TypeResponseItemGroup                  = "ResponseItemGroup"
)

// ItemResult is the per-item outcome.
type ItemResult string

const (
	ItemAccepted ItemResult = "Accepted"
	ItemRejected ItemResult = "Rejected"
)

// ResponseItem answers the request item at the same position.
type ResponseItem interface {
	ItemType() string
	Result() ItemResult
}

// AcceptResponseItem is the plain acceptance with no payload.
type AcceptResponseItem struct{}

func (AcceptResponseItem) ItemType() string   { return TypeAcceptResponseItem }
func (AcceptResponseItem) Result() ItemResult { return ItemAccepted }

// RejectResponseItem carries an optional machine code and message.
type RejectResponseItem struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (RejectResponseItem) ItemType() string   { return TypeRejectResponseItem }
func (RejectResponseItem) Result() ItemResult { return ItemRejected }

type CreateAttributeAcceptResponseItem struct {
	AttributeID id.AttributeID `json:"attributeId"`
}

func (CreateAttributeAcceptResponseItem) ItemType() string {
	return TypeCreateAttributeAcceptResponseItem
}
func (CreateAttributeAcceptResponseItem) Result() ItemResult { return ItemAccepted }

type ReadAttributeAcceptResponseItem struct {
	AttributeID id.AttributeID     `json:"attributeId"`
	Attribute   attrmodels.Content `json:"attribute"`
}

func (ReadAttributeAcceptResponseItem) ItemType() string   { return TypeReadAttributeAcceptResponseItem }
func (ReadAttributeAcceptResponseItem) Result() ItemResult { return ItemAccepted }

type ProposeAttributeAcceptResponseItem struct {
	AttributeID id.AttributeID     `json:"attributeId"`
	Attribute   attrmodels.Content `json:"attribute"`
}

func (ProposeAttributeAcceptResponseItem) ItemType() string {
	return TypeProposeAttributeAcceptResponseItem
}
func (ProposeAttributeAcceptResponseItem) Result() ItemResult { return ItemAccepted }

// ShareAttributeAcceptResponseItem names the copy created for the third party.
type ShareAttributeAcceptResponseItem struct {
	AttributeID id.AttributeID `json:"attributeId"`
}

func (ShareAttributeAcceptResponseItem) ItemType() string {
	return TypeShareAttributeAcceptResponseItem
}
func (ShareAttributeAcceptResponseItem) Result() ItemResult { return ItemAccepted }

// GenericResponseItem holds a response item of an unknown type.
type GenericResponseItem struct {
	Type    string
	Outcome ItemResult
	Body    json.RawMessage
}

func (g GenericResponseItem) ItemType() string   { return g.Type }
func (g GenericResponseItem) Result() ItemResult { return g.Outcome }

// ResponseItemGroup answers a RequestItemGroup child for child.
type ResponseItemGroup struct {
	Items []ResponseItem
}

// ResponseEntry mirrors RequestEntry.
type ResponseEntry struct {
	Item  ResponseItem
	Group *ResponseItemGroup
}

func (e ResponseEntry) IsGroup() bool { return e.Group != nil }
