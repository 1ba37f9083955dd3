package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "parley/pkg/domain-errors"
)

func TestRunInTxCancelledContext(t *testing.T) {
	r := NewSQLRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := r.RunInTx(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, called)
}

func TestRunInTxReusesContextTransaction(t *testing.T) {
	r := NewSQLRunner(nil)
	outer := &sql.Tx{}
	ctx := WithTx(context.Background(), outer)

	err := r.RunInTx(ctx, func(ctx context.Context) error {
		got, ok := From(ctx)
		assert.True(t, ok)
		assert.Same(t, outer, got)
		return nil
	})
	assert.NoError(t, err)
}

func TestWithTxIgnoresNil(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	_, ok := From(ctx)
	assert.False(t, ok)
}
