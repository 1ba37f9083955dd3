package models

import (
	"encoding/json"

	attrmodels "parley/internal/attributes/models"
	id "parley/pkg/domain"
)

// Item type tags of the built-in request items.
const (
	TypeCreateAttributeRequestItem  = "CreateAttributeRequestItem"
	TypeReadAttributeRequestItem    = "ReadAttributeRequestItem"
	TypeProposeAttributeRequestItem = "ProposeAttributeRequestItem"
	TypeShareAttributeRequestItem   = "ShareAttributeRequestItem"
	TypeRequestItemGroup            = "RequestItemGroup"
)

// RequestItem is one leaf of a request. Concrete types are matched to a
// processor by ItemType.
type RequestItem interface {
	ItemType() string
	IsMustBeAccepted() bool
}

// ItemBase carries the fields every leaf has.
type ItemBase struct {
	MustBeAccepted bool   `json:"mustBeAccepted"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
}

func (b ItemBase) IsMustBeAccepted() bool { return b.MustBeAccepted }

// CreateAttributeRequestItem asks the peer to store an attribute we provide.
type CreateAttributeRequestItem struct {
	ItemBase
	Attribute attrmodels.Content `json:"attribute"`
}

func (CreateAttributeRequestItem) ItemType() string { return TypeCreateAttributeRequestItem }

// ReadAttributeRequestItem asks the peer for an attribute matching Query.
type ReadAttributeRequestItem struct {
	ItemBase
	Query attrmodels.Query `json:"query"`
}

func (ReadAttributeRequestItem) ItemType() string { return TypeReadAttributeRequestItem }

// ProposeAttributeRequestItem asks for an attribute matching Query and
// suggests Attribute as the answer.
type ProposeAttributeRequestItem struct {
	ItemBase
	Query     attrmodels.Query   `json:"query"`
	Attribute attrmodels.Content `json:"attribute"`
}

func (ProposeAttributeRequestItem) ItemType() string { return TypeProposeAttributeRequestItem }

// ShareAttributeRequestItem asks the peer to share one of its attributes
// with a third party.
type ShareAttributeRequestItem struct {
	ItemBase
	AttributeID id.AttributeID `json:"attributeId"`
	ShareWith   id.Address     `json:"shareWith"`
}

func (ShareAttributeRequestItem) ItemType() string { return TypeShareAttributeRequestItem }

// GenericRequestItem holds an item whose type has no built-in Go type. Body
// is the complete JSON object, tag included, for custom processors to decode.
type GenericRequestItem struct {
	Type           string
	MustBeAccepted bool
	Body           json.RawMessage
}

func (g GenericRequestItem) ItemType() string       { return g.Type }
func (g GenericRequestItem) IsMustBeAccepted() bool { return g.MustBeAccepted }

// RequestItemGroup bundles leaves. Groups never nest.
type RequestItemGroup struct {
	Title          string
	Description    string
	MustBeAccepted bool
	Items          []RequestItem
}

// RequestEntry is one top-level position of a request: a leaf or a group.
type RequestEntry struct {
	Item  RequestItem
	Group *RequestItemGroup
}

func (e RequestEntry) IsGroup() bool { return e.Group != nil }

// Leaf wraps item as a top-level entry.
func Leaf(item RequestItem) RequestEntry {
	return RequestEntry{Item: item}
}

// Group wraps items as a top-level group entry.
func Group(title string, mustBeAccepted bool, items ...RequestItem) RequestEntry {
	return RequestEntry{Group: &RequestItemGroup{Title: title, MustBeAccepted: mustBeAccepted, Items: items}}
}

// WalkItems visits every leaf in processing order: entries by index,
// group children depth-first.
func WalkItems(entries []RequestEntry, fn func(item RequestItem) error) error {
	for _, e := range entries {
		if e.Group == nil {
			if err := fn(e.Item); err != nil {
				return err
			}
			continue
		}
		for _, item := range e.Group.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}
	return nil
}
