package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attrmodels "parley/internal/attributes/models"
	id "parley/pkg/domain"
	dErrors "parley/pkg/domain-errors"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func readItem(mustBeAccepted bool) ReadAttributeRequestItem {
	return ReadAttributeRequestItem{
		ItemBase: ItemBase{MustBeAccepted: mustBeAccepted},
		Query:    attrmodels.Query{Type: attrmodels.QueryTypeIdentity, ValueType: "GivenName"},
	}
}

func TestOutgoingLifecycle(t *testing.T) {
	r, err := NewOutgoingRequest(RequestContent{Items: []RequestEntry{Leaf(readItem(true))}}, "did:e:bob", t0)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, r.Status)
	assert.True(t, r.IsOwn)
	assert.False(t, r.ID.IsNil())
	assert.Equal(t, r.ID, r.Content.ID)

	require.NoError(t, r.CanSend())
	r.ApplySent(RequestSource{Type: RequestSourceMessage, Reference: "MSG1"}, t0.Add(time.Second))
	assert.Equal(t, StatusOpen, r.Status)

	assert.True(t, dErrors.HasCode(r.CanSend(), dErrors.CodeInvalidState), "Open cannot be sent again")
	assert.True(t, dErrors.HasCode(r.CanDecide(), dErrors.CodeInvalidState), "own requests are never decided")

	require.NoError(t, r.CanComplete())
	r.ApplyCompleted(Response{CreatedAt: t0, Content: ResponseContent{Result: ResponseAccepted, RequestID: r.ID}}, t0.Add(2*time.Second))
	assert.Equal(t, StatusCompleted, r.Status)
	assert.True(t, dErrors.HasCode(r.CanFail(), dErrors.CodeInvalidState), "terminal requests cannot fail")

	require.Len(t, r.StatusLog, 2)
	assert.Equal(t, StatusLogEntry{CreatedAt: t0.Add(time.Second), OldStatus: StatusDraft, NewStatus: StatusOpen}, r.StatusLog[0])
}

func TestIncomingLifecycle(t *testing.T) {
	_, err := NewIncomingRequest(RequestContent{Items: []RequestEntry{Leaf(readItem(false))}}, "did:e:bob", RequestSource{Type: "Email", Reference: "x"}, t0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	r, err := NewIncomingRequest(RequestContent{ID: "REQabc", Items: []RequestEntry{Leaf(readItem(false))}}, "did:e:bob",
		RequestSource{Type: RequestSourceMessage, Reference: "MSG1"}, t0)
	require.NoError(t, err)
	assert.Equal(t, id.RequestID("REQabc"), r.ID)
	assert.Equal(t, StatusOpen, r.Status)

	assert.Error(t, r.CanAnswer(), "Open cannot skip to Answered")
	require.NoError(t, r.CanDecide())
	r.ApplyDecided(Response{Content: ResponseContent{Result: ResponseRejected, RequestID: r.ID}}, t0)
	require.NoError(t, r.CanAnswer())
	r.ApplyAnswered(&ResponseSource{Type: ResponseSourceMessage, Reference: "MSG2"}, t0)

	assert.Equal(t, StatusAnswered, r.Status)
	require.NotNil(t, r.Response.Source)
	assert.Equal(t, "MSG2", r.Response.Source.Reference)
}

func TestStatusRanksNeverDecrease(t *testing.T) {
	statuses := []Status{StatusDraft, StatusOpen, StatusDecided, StatusAnswered, StatusCompleted, StatusError}
	for _, from := range statuses {
		for _, to := range statuses {
			if from.CanTransitionTo(to) {
				assert.Greater(t, to.Rank(), from.Rank(), "%s -> %s", from, to)
			}
		}
	}
	for _, s := range []Status{StatusDraft, StatusOpen, StatusDecided} {
		assert.True(t, s.CanTransitionTo(StatusError), "%s must be able to fail", s)
	}
	assert.False(t, Status("Bogus").CanTransitionTo(StatusError))
}

func TestFail(t *testing.T) {
	r, err := NewOutgoingRequest(RequestContent{Items: []RequestEntry{Leaf(readItem(false))}}, "did:e:bob", t0)
	require.NoError(t, err)
	require.NoError(t, r.CanFail())
	r.ApplyFailed("peer response invalid", t0)
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "peer response invalid", r.ErrorReason)
	assert.Error(t, r.CanSend())
}

func TestCloneDoesNotAlias(t *testing.T) {
	r, err := NewOutgoingRequest(RequestContent{Items: []RequestEntry{Group("g", false, readItem(false), readItem(true))}}, "did:e:bob", t0)
	require.NoError(t, err)

	c := r.Clone()
	c.Content.Items[0].Group.Items[0] = readItem(true)
	c.StatusLog = append(c.StatusLog, StatusLogEntry{})

	assert.False(t, r.Content.Items[0].Group.Items[0].IsMustBeAccepted())
	assert.Empty(t, r.StatusLog)
}

func TestQueryMatches(t *testing.T) {
	own := true
	r, err := NewOutgoingRequest(RequestContent{Items: []RequestEntry{Leaf(readItem(false))}}, "did:e:bob", t0)
	require.NoError(t, err)

	assert.True(t, Query{}.Matches(r))
	assert.True(t, Query{IsOwn: &own, Peer: "did:e:bob", Statuses: []Status{StatusDraft}}.Matches(r))
	assert.False(t, Query{Statuses: []Status{StatusOpen}}.Matches(r))
	assert.False(t, Query{Peer: "did:e:carol"}.Matches(r))
	before := t0.Add(-time.Hour)
	assert.True(t, Query{CreatedAfter: &before}.Matches(r))
	assert.False(t, Query{CreatedBefore: &before}.Matches(r))
}
