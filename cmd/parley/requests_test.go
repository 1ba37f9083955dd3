package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/requests/models"
)

func TestListFlagsQuery(t *testing.T) {
	q, err := listFlags{peer: "did:e:bob", statuses: []string{"Open", "Completed"}, since: time.Hour, limit: 5}.query()
	require.NoError(t, err)
	assert.Equal(t, "did:e:bob", string(q.Peer))
	assert.Equal(t, []models.Status{models.StatusOpen, models.StatusCompleted}, q.Statuses)
	assert.Equal(t, 5, q.Limit)
	require.NotNil(t, q.CreatedAfter)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), *q.CreatedAfter, time.Minute)

	_, err = listFlags{statuses: []string{"Pending"}}.query()
	assert.Error(t, err)
}
