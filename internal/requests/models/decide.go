package models

import (
	"encoding/json"

	attrmodels "parley/internal/attributes/models"
	id "parley/pkg/domain"
)

// DecideRequestParameters is the decider's answer, shaped like the request
// tree: one entry per top-level item, group entries carrying one per child.
type DecideRequestParameters struct {
	RequestID id.RequestID           `json:"requestId"`
	Accept    bool                   `json:"accept"`
	Items     []DecideItemParameters `json:"items"`
}

// DecideItemParameters is a leaf decision or a group of leaf decisions.
type DecideItemParameters struct {
	Item  *DecideRequestItemParameters
	Group *DecideRequestItemGroupParameters
}

func (p DecideItemParameters) IsGroup() bool { return p.Group != nil }

// DecideRequestItemParameters decides one leaf. Code and Message are used
// on rejection; Params on acceptance.
type DecideRequestItemParameters struct {
	Accept  bool         `json:"accept"`
	Params  AcceptParams `json:"params,omitzero"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

type DecideRequestItemGroupParameters struct {
	Items []DecideRequestItemParameters `json:"items"`
}

// AcceptParams are the per-type acceptance inputs. Read and Propose accept
// either an existing AttributeID or a new Attribute; Custom is passed to
// custom processors untouched.
type AcceptParams struct {
	AttributeID id.AttributeID      `json:"attributeId,omitempty"`
	Attribute   *attrmodels.Content `json:"attribute,omitempty"`
	Custom      json.RawMessage     `json:"custom,omitempty"`
}

// AcceptItem and RejectItem build leaf decisions.
func AcceptItem(params AcceptParams) DecideItemParameters {
	return DecideItemParameters{Item: &DecideRequestItemParameters{Accept: true, Params: params}}
}

func RejectItem(code, message string) DecideItemParameters {
	return DecideItemParameters{Item: &DecideRequestItemParameters{Code: code, Message: message}}
}

// DecideGroup builds a group decision.
func DecideGroup(items ...DecideRequestItemParameters) DecideItemParameters {
	return DecideItemParameters{Group: &DecideRequestItemGroupParameters{Items: items}}
}

func (p DecideItemParameters) MarshalJSON() ([]byte, error) {
	if p.Group != nil {
		return json.Marshal(p.Group)
	}
	if p.Item == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p.Item)
}

// UnmarshalJSON treats an object with an "items" array as a group.
func (p *DecideItemParameters) UnmarshalJSON(data []byte) error {
	var peek struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}
	if len(peek.Items) > 0 && string(peek.Items) != "null" {
		var g DecideRequestItemGroupParameters
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		*p = DecideItemParameters{Group: &g}
		return nil
	}
	var item DecideRequestItemParameters
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*p = DecideItemParameters{Item: &item}
	return nil
}
