package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/account"
	"parley/internal/requests/models"
	"parley/internal/requests/processors"
	"parley/internal/requests/store"
	"parley/pkg/platform/audit"
	"parley/pkg/requestcontext"
)

type inTxKey struct{}

type countingTransactor struct{ calls int }

func (t *countingTransactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(context.WithValue(ctx, inTxKey{}, true))
}

// txCheckingPublisher records whether each event was emitted inside a transaction.
type txCheckingPublisher struct{ inside []bool }

func (p *txCheckingPublisher) Emit(ctx context.Context, _ audit.Event) error {
	inside, _ := ctx.Value(inTxKey{}).(bool)
	p.inside = append(p.inside, inside)
	return nil
}

func TestTransitionsAndAuditShareTransaction(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	transactor := &countingTransactor{}
	publisher := &txCheckingPublisher{}
	identity := account.NewIdentity(alice)
	deps := Dependencies{
		Store:    store.NewInMemory(),
		Registry: processors.NewDefaultRegistry(processors.Dependencies{Identity: identity, Relationships: account.NewInMemoryRelationships(bob)}),
		Identity: identity,
	}
	outgoing := NewOutgoing(deps, WithTransactor(transactor), WithAuditPublisher(publisher))

	r, err := outgoing.Create(ctx, CreateOutgoingParameters{
		Peer:    bob,
		Content: models.RequestContent{Items: []models.RequestEntry{models.Leaf(readGivenName(true))}},
	})
	require.NoError(t, err)
	_, err = outgoing.Sent(ctx, SentParameters{RequestID: r.ID, Source: messageSource("MSG-1")})
	require.NoError(t, err)

	assert.Equal(t, 2, transactor.calls)
	assert.Equal(t, []bool{true, true}, publisher.inside)
}
