package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "parley/pkg/domain"
	audit "parley/pkg/platform/audit"
	txcontext "parley/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table. When the context
// carries a transaction the insert joins it.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts one event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, request_id, attribute_id, peer, action,
			old_status, new_status, decision, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		string(event.RequestID),
		string(event.AttributeID),
		string(event.Peer),
		event.Action,
		event.OldStatus,
		event.NewStatus,
		event.Decision,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByRequest returns the events of one request, oldest first.
func (s *Store) ListByRequest(ctx context.Context, requestID id.RequestID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, request_id, attribute_id, peer, action,
			   old_status, new_status, decision, reason
		FROM audit_events
		WHERE request_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(requestID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category, reqID, attrID, peer string
			event                         audit.Event
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&reqID,
			&attrID,
			&peer,
			&event.Action,
			&event.OldStatus,
			&event.NewStatus,
			&event.Decision,
			&event.Reason,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.RequestID = id.RequestID(reqID)
		event.AttributeID = id.AttributeID(attrID)
		event.Peer = id.Address(peer)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
