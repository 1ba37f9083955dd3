//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "parley/pkg/platform/audit"
	"parley/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
	ctx   context.Context
}

func TestAuditStoreSuite(t *testing.T) {
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = New(s.pg.DB.SQL)
}

func (s *AuditStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.pg.Truncate(s.ctx))
}

func (s *AuditStoreSuite) TestEventsOfOneRequestInOrder() {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	publisher := audit.NewPublisher(s.store)
	events := []audit.Event{
		{Timestamp: base.Add(time.Minute), RequestID: "REQ-1", Action: string(audit.EventRequestSent), OldStatus: "Draft", NewStatus: "Open"},
		{Timestamp: base, RequestID: "REQ-1", Action: string(audit.EventRequestCreated), NewStatus: "Draft"},
		{Timestamp: base, RequestID: "REQ-2", Action: string(audit.EventRequestCreated), NewStatus: "Draft"},
	}
	for _, e := range events {
		s.Require().NoError(publisher.Emit(s.ctx, e))
	}

	got, err := s.store.ListByRequest(s.ctx, "REQ-1")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(string(audit.EventRequestCreated), got[0].Action)
	s.Equal(string(audit.EventRequestSent), got[1].Action)
	s.Equal(audit.CategoryOperations, got[1].Category)
	s.Equal("Open", got[1].NewStatus)
}
