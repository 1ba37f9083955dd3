package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Items travel as JSON objects tagged with "@type". Built-in tags decode to
// their Go types; any other tag decodes to the Generic variant so custom
// processors can read the raw body.

type typePeek struct {
	Type           string     `json:"@type"`
	MustBeAccepted bool       `json:"mustBeAccepted"`
	Result         ItemResult `json:"result"`
}

// EncodeRequestItem renders item with its "@type" tag.
func EncodeRequestItem(item RequestItem) ([]byte, error) {
	if item == nil {
		return nil, fmt.Errorf("request item is nil")
	}
	if g, ok := asGenericRequestItem(item); ok {
		if len(g.Body) > 0 {
			return g.Body, nil
		}
		return json.Marshal(typePeek{Type: g.Type, MustBeAccepted: g.MustBeAccepted})
	}
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return withFields(body, "@type", item.ItemType())
}

// DecodeRequestItem reads one tagged request item.
func DecodeRequestItem(data []byte) (RequestItem, error) {
	var peek typePeek
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("decode request item: %w", err)
	}
	switch peek.Type {
	case "":
		return nil, fmt.Errorf("request item has no @type")
	case TypeRequestItemGroup:
		return nil, fmt.Errorf("request item groups cannot be nested")
	case TypeCreateAttributeRequestItem:
		return decodeAs[CreateAttributeRequestItem](data)
	case TypeReadAttributeRequestItem:
		return decodeAs[ReadAttributeRequestItem](data)
	case TypeProposeAttributeRequestItem:
		return decodeAs[ProposeAttributeRequestItem](data)
	case TypeShareAttributeRequestItem:
		return decodeAs[ShareAttributeRequestItem](data)
	default:
		return GenericRequestItem{
			Type:           peek.Type,
			MustBeAccepted: peek.MustBeAccepted,
			Body:           append(json.RawMessage(nil), data...),
		}, nil
	}
}

// EncodeResponseItem renders item with its "@type" and "result" fields.
func EncodeResponseItem(item ResponseItem) ([]byte, error) {
	if item == nil {
		return nil, fmt.Errorf("response item is nil")
	}
	if g, ok := item.(GenericResponseItem); ok && len(g.Body) > 0 {
		return g.Body, nil
	}
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return withFields(body, "@type", item.ItemType(), "result", string(item.Result()))
}

// DecodeResponseItem reads one tagged response item.
func DecodeResponseItem(data []byte) (ResponseItem, error) {
	var peek typePeek
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("decode response item: %w", err)
	}
	var (
		item ResponseItem
		err  error
	)
	switch peek.Type {
	case "":
		return nil, fmt.Errorf("response item has no @type")
	case TypeResponseItemGroup:
		return nil, fmt.Errorf("response item groups cannot be nested")
	case TypeAcceptResponseItem:
		item = AcceptResponseItem{}
	case TypeRejectResponseItem:
		item, err = decodeAs[RejectResponseItem](data)
	case TypeCreateAttributeAcceptResponseItem:
		item, err = decodeAs[CreateAttributeAcceptResponseItem](data)
	case TypeReadAttributeAcceptResponseItem:
		item, err = decodeAs[ReadAttributeAcceptResponseItem](data)
	case TypeProposeAttributeAcceptResponseItem:
		item, err = decodeAs[ProposeAttributeAcceptResponseItem](data)
	case TypeShareAttributeAcceptResponseItem:
		item, err = decodeAs[ShareAttributeAcceptResponseItem](data)
	default:
		if peek.Result != ItemAccepted && peek.Result != ItemRejected {
			return nil, fmt.Errorf("response item %s has invalid result %q", peek.Type, peek.Result)
		}
		return GenericResponseItem{
			Type:    peek.Type,
			Outcome: peek.Result,
			Body:    append(json.RawMessage(nil), data...),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if peek.Result != "" && peek.Result != item.Result() {
		return nil, fmt.Errorf("%s cannot carry result %q", peek.Type, peek.Result)
	}
	return item, nil
}

type requestGroupJSON struct {
	Type           string            `json:"@type"`
	Title          string            `json:"title,omitempty"`
	Description    string            `json:"description,omitempty"`
	MustBeAccepted bool              `json:"mustBeAccepted"`
	Items          []json.RawMessage `json:"items"`
}

func (e RequestEntry) MarshalJSON() ([]byte, error) {
	if e.Group == nil {
		return EncodeRequestItem(e.Item)
	}
	out := requestGroupJSON{
		Type:           TypeRequestItemGroup,
		Title:          e.Group.Title,
		Description:    e.Group.Description,
		MustBeAccepted: e.Group.MustBeAccepted,
		Items:          make([]json.RawMessage, 0, len(e.Group.Items)),
	}
	for _, item := range e.Group.Items {
		raw, err := EncodeRequestItem(item)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, raw)
	}
	return json.Marshal(out)
}

func (e *RequestEntry) UnmarshalJSON(data []byte) error {
	var peek typePeek
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}
	if peek.Type != TypeRequestItemGroup {
		item, err := DecodeRequestItem(data)
		if err != nil {
			return err
		}
		*e = RequestEntry{Item: item}
		return nil
	}
	var raw requestGroupJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	group := &RequestItemGroup{
		Title:          raw.Title,
		Description:    raw.Description,
		MustBeAccepted: raw.MustBeAccepted,
		Items:          make([]RequestItem, 0, len(raw.Items)),
	}
	for i, itemData := range raw.Items {
		item, err := DecodeRequestItem(itemData)
		if err != nil {
			return fmt.Errorf("group item %d: %w", i, err)
		}
		group.Items = append(group.Items, item)
	}
	*e = RequestEntry{Group: group}
	return nil
}

type responseGroupJSON struct {
	Type  string            `json:"@type"`
	Items []json.RawMessage `json:"items"`
}

func (e ResponseEntry) MarshalJSON() ([]byte, error) {
	if e.Group == nil {
		return EncodeResponseItem(e.Item)
	}
	out := responseGroupJSON{Type: TypeResponseItemGroup, Items: make([]json.RawMessage, 0, len(e.Group.Items))}
	for _, item := range e.Group.Items {
		raw, err := EncodeResponseItem(item)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, raw)
	}
	return json.Marshal(out)
}

func (e *ResponseEntry) UnmarshalJSON(data []byte) error {
	var peek typePeek
	if err := json.Unmarshal(data, &peek); err != nil {
		return err
	}
	if peek.Type != TypeResponseItemGroup {
		item, err := DecodeResponseItem(data)
		if err != nil {
			return err
		}
		*e = ResponseEntry{Item: item}
		return nil
	}
	var raw responseGroupJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	group := &ResponseItemGroup{Items: make([]ResponseItem, 0, len(raw.Items))}
	for i, itemData := range raw.Items {
		item, err := DecodeResponseItem(itemData)
		if err != nil {
			return fmt.Errorf("group item %d: %w", i, err)
		}
		group.Items = append(group.Items, item)
	}
	*e = ResponseEntry{Group: group}
	return nil
}

func decodeAs[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %T: %w", v, err)
	}
	return v, nil
}

func asGenericRequestItem(item RequestItem) (GenericRequestItem, bool) {
	switch g := item.(type) {
	case GenericRequestItem:
		return g, true
	case *GenericRequestItem:
		if g != nil {
			return *g, true
		}
	}
	return GenericRequestItem{}, false
}

// withFields prepends string-valued key/value pairs to a JSON object.
func withFields(body []byte, kv ...string) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("item must encode as a JSON object")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i+1 < len(kv); i += 2 {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv[i])
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(kv[i+1])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	rest := bytes.TrimSpace(body[1:])
	if len(rest) > 0 && rest[0] != '}' {
		buf.WriteByte(',')
	}
	buf.Write(rest)
	return buf.Bytes(), nil
}
