package models

import (
	"time"

	id "parley/pkg/domain"
	pstrings "parley/pkg/platform/strings"
)

// Filter selects stored attributes. Zero-valued fields do not constrain.
type Filter struct {
	Kind      Kind
	Owner     id.Address
	ValueType string
	Key       string

	// SharedWithPeer matches records whose ShareInfo.Peer equals the address.
	SharedWithPeer id.Address
	// SourceAttribute matches copies made from the given attribute.
	SourceAttribute id.AttributeID
	// OnlyOriginals excludes every shared copy.
	OnlyOriginals bool
	// ValidAt restricts to attributes current at that instant.
	ValidAt *time.Time
}

// Matches reports whether a satisfies every set constraint.
func (f Filter) Matches(a *LocalAttribute) bool {
	if f.Kind != "" && a.Content.Kind != f.Kind {
		return false
	}
	if f.Owner != "" && a.Content.Owner != f.Owner {
		return false
	}
	if f.ValueType != "" && a.Content.ValueType != f.ValueType {
		return false
	}
	if f.Key != "" && a.Content.Key != f.Key {
		return false
	}
	if f.SharedWithPeer != "" && (a.ShareInfo == nil || a.ShareInfo.Peer != f.SharedWithPeer) {
		return false
	}
	if f.SourceAttribute != "" {
		if a.ShareInfo == nil || a.ShareInfo.SourceAttribute == nil || *a.ShareInfo.SourceAttribute != f.SourceAttribute {
			return false
		}
	}
	if f.OnlyOriginals && a.ShareInfo != nil {
		return false
	}
	if f.ValidAt != nil && !a.IsValidAt(*f.ValidAt) {
		return false
	}
	return true
}

// QueryType tags the attribute queries carried by read and propose items.
type QueryType string

const (
	QueryTypeIdentity     QueryType = "IdentityAttributeQuery"
	QueryTypeRelationship QueryType = "RelationshipAttributeQuery"
)

// Query describes the attribute a peer asks for. Identity queries need a value
// type; relationship queries also need a key and the expected owner.
type Query struct {
	Type      QueryType  `json:"@type"`
	ValueType string     `json:"valueType"`
	Key       string     `json:"key,omitempty"`
	Owner     id.Address `json:"owner,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	ValidFrom *time.Time `json:"validFrom,omitempty"`
	ValidTo   *time.Time `json:"validTo,omitempty"`
}

// Problem returns a human-readable reason why the query is malformed, or ""
// when it is well formed.
func (q Query) Problem() string {
	switch q.Type {
	case QueryTypeIdentity:
		if q.ValueType == "" {
			return "an IdentityAttributeQuery requires a valueType"
		}
	case QueryTypeRelationship:
		if q.ValueType == "" || q.Key == "" || q.Owner.IsNil() {
			return "a RelationshipAttributeQuery requires key, owner and valueType"
		}
	default:
		return "unknown attribute query type"
	}
	if q.ValidFrom != nil && q.ValidTo != nil && q.ValidTo.Before(*q.ValidFrom) {
		return "query validTo must not be before validFrom"
	}
	return ""
}

// Kind returns the attribute kind the query asks for.
func (q Query) Kind() Kind {
	if q.Type == QueryTypeRelationship {
		return KindRelationship
	}
	return KindIdentity
}

// MatchesContent reports whether c would answer the query.
func (q Query) MatchesContent(c Content) bool {
	if c.Kind != q.Kind() || c.ValueType != q.ValueType {
		return false
	}
	if q.Type == QueryTypeRelationship && (c.Key != q.Key || c.Owner != q.Owner) {
		return false
	}
	return pstrings.ContainsAll(c.Tags, q.Tags)
}
