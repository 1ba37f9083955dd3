package models

import (
	"encoding/json"
	"slices"
	"sort"
	"time"

	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
	pstrings "parley/pkg/platform/strings"
)

// Kind distinguishes identity attributes (facts about the owner) from
// relationship attributes (facts scoped to one relationship).
type Kind string

const (
	KindIdentity     Kind = "IdentityAttribute"
	KindRelationship Kind = "RelationshipAttribute"
)

func (k Kind) IsValid() bool {
	return k == KindIdentity || k == KindRelationship
}

// Confidentiality applies to relationship attributes only.
type Confidentiality string

const (
	ConfidentialityPublic    Confidentiality = "public"
	ConfidentialityProtected Confidentiality = "protected"
	ConfidentialityPrivate   Confidentiality = "private"
)

// Content is the attribute value as exchanged between parties.
type Content struct {
	Kind            Kind            `json:"@type"`
	Owner           id.Address      `json:"owner"`
	ValueType       string          `json:"valueType"`
	Value           json.RawMessage `json:"value,omitempty"`
	Key             string          `json:"key,omitempty"`
	Confidentiality Confidentiality `json:"confidentiality,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	ValidFrom       *time.Time      `json:"validFrom,omitempty"`
	ValidTo         *time.Time      `json:"validTo,omitempty"`
}

// Validate checks the structural invariants of attribute content.
func (c Content) Validate() error {
	if !c.Kind.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "attribute type must be IdentityAttribute or RelationshipAttribute")
	}
	if c.Owner.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "attribute owner is required")
	}
	if c.ValueType == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "attribute value type is required")
	}
	if c.Kind == KindRelationship && c.Key == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "relationship attribute key is required")
	}
	if c.ValidFrom != nil && c.ValidTo != nil && c.ValidTo.Before(*c.ValidFrom) {
		return dErrors.New(dErrors.CodeInvalidInput, "attribute validTo must not be before validFrom")
	}
	return nil
}

// Normalized trims and dedupes tags. Services store normalized content.
func (c Content) Normalized() Content {
	out := c.Clone()
	out.Tags = pstrings.DedupeAndTrim(c.Tags)
	return out
}

// Clone returns a deep copy so stored records never alias caller memory.
func (c Content) Clone() Content {
	out := c
	if c.Value != nil {
		out.Value = append(json.RawMessage(nil), c.Value...)
	}
	out.Tags = slices.Clone(c.Tags)
	out.ValidFrom = cloneTime(c.ValidFrom)
	out.ValidTo = cloneTime(c.ValidTo)
	return out
}

// ShareInfo records that a LocalAttribute is a copy exchanged with a peer
// under a specific request.
type ShareInfo struct {
	Peer             id.Address      `json:"peer"`
	RequestReference id.RequestID    `json:"requestReference,omitempty"`
	SourceAttribute  *id.AttributeID `json:"sourceAttribute,omitempty"`
}

// LocalAttribute is one stored version of an attribute.
//
// Invariants:
//   - Succeeds/SucceededBy form a singly linked version chain
//   - a record with ShareInfo.SourceAttribute is our own copy shared with the peer;
//     a record with ShareInfo but no SourceAttribute was received from the peer
type LocalAttribute struct {
	ID          id.AttributeID  `json:"id"`
	Content     Content         `json:"content"`
	CreatedAt   time.Time       `json:"createdAt"`
	Succeeds    *id.AttributeID `json:"succeeds,omitempty"`
	SucceededBy *id.AttributeID `json:"succeededBy,omitempty"`
	ShareInfo   *ShareInfo      `json:"shareInfo,omitempty"`
}

// IsValidAt reports whether the attribute is current at t: validFrom unset or
// not after t, and validTo unset or not before t.
func (a *LocalAttribute) IsValidAt(t time.Time) bool {
	if a.Content.ValidFrom != nil && a.Content.ValidFrom.After(t) {
		return false
	}
	if a.Content.ValidTo != nil && a.Content.ValidTo.Before(t) {
		return false
	}
	return true
}

// IsShared reports whether the record is a copy exchanged with a peer.
func (a *LocalAttribute) IsShared() bool {
	return a.ShareInfo != nil
}

// IsOwnedBy reports whether addr owns the attribute content.
func (a *LocalAttribute) IsOwnedBy(addr id.Address) bool {
	return a.Content.Owner == addr
}

// Clone returns a deep copy.
func (a *LocalAttribute) Clone() *LocalAttribute {
	if a == nil {
		return nil
	}
	out := *a
	out.Content = a.Content.Clone()
	out.Succeeds = cloneID(a.Succeeds)
	out.SucceededBy = cloneID(a.SucceededBy)
	if a.ShareInfo != nil {
		si := *a.ShareInfo
		si.SourceAttribute = cloneID(a.ShareInfo.SourceAttribute)
		out.ShareInfo = &si
	}
	return &out
}

// FindCurrent picks the current attribute at now among attrs: iterate in
// createdAt order and keep the last one valid at now, so later successors win.
// Returns nil when none is valid.
func FindCurrent(attrs []*LocalAttribute, now time.Time) *LocalAttribute {
	sorted := slices.Clone(attrs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	var current *LocalAttribute
	for _, a := range sorted {
		if a.IsValidAt(now) {
			current = a
		}
	}
	return current
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneID(v *id.AttributeID) *id.AttributeID {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
