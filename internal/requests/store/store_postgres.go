package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"parley/internal/requests/models"
	id "parley/pkg/domain"
	"parley/pkg/platform/sentinel"
	txcontext "parley/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists requests as JSONB documents through database/sql.
// Direction, peer, status and creation time are denormalized for filtering.
// Writes join the transaction carried by the context, if any.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, request *models.Request) error {
	doc, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO requests (id, is_own, peer, status, created_at, document)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(request.ID), request.IsOwn, string(request.Peer), string(request.Status), request.CreatedAt, doc,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, request *models.Request) error {
	doc, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE requests SET status = $2, document = $3 WHERE id = $1`,
		string(request.ID), string(request.Status), doc,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	var doc []byte
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT document FROM requests WHERE id = $1`, string(requestID)).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return decodeRequest(doc)
}

func (s *PostgresStore) List(ctx context.Context, query models.Query) ([]*models.Request, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if query.IsOwn != nil {
		add("is_own = $%d", *query.IsOwn)
	}
	if query.Peer != "" {
		add("peer = $%d", string(query.Peer))
	}
	if len(query.Statuses) > 0 {
		statuses := make([]string, len(query.Statuses))
		for i, st := range query.Statuses {
			statuses[i] = string(st)
		}
		add("status = ANY($%d)", pq.Array(statuses))
	}
	if query.CreatedAfter != nil {
		add("created_at > $%d", *query.CreatedAfter)
	}
	if query.CreatedBefore != nil {
		add("created_at < $%d", *query.CreatedBefore)
	}

	q := `SELECT document FROM requests`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at ASC, id ASC"
	if query.Limit > 0 {
		args = append(args, query.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.execer(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		r, err := decodeRequest(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return out, nil
}

func decodeRequest(doc []byte) (*models.Request, error) {
	var r models.Request
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	return &r, nil
}
