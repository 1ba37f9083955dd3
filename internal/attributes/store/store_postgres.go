package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"parley/internal/attributes/models"
	id "parley/pkg/domain"
	"parley/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists attributes in PostgreSQL through a pgx pool. Content
// is stored as JSONB; the columns used for filtering are denormalized.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed attribute store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const attributeColumns = `id, content, created_at, succeeds, succeeded_by, share_peer, share_request, share_source`

func (s *PostgresStore) Create(ctx context.Context, attr *models.LocalAttribute) error {
	contentBytes, err := json.Marshal(attr.Content)
	if err != nil {
		return fmt.Errorf("marshal attribute content: %w", err)
	}
	peer, request, source := shareColumns(attr.ShareInfo)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO attributes (
			id, content, created_at, succeeds, succeeded_by, share_peer, share_request, share_source,
			kind, owner, value_type, attr_key, valid_from, valid_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		string(attr.ID), contentBytes, attr.CreatedAt,
		nullableID(attr.Succeeds), nullableID(attr.SucceededBy),
		peer, request, source,
		string(attr.Content.Kind), string(attr.Content.Owner), attr.Content.ValueType, attr.Content.Key,
		attr.Content.ValidFrom, attr.Content.ValidTo,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert attribute: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, attr *models.LocalAttribute) error {
	contentBytes, err := json.Marshal(attr.Content)
	if err != nil {
		return fmt.Errorf("marshal attribute content: %w", err)
	}
	peer, request, source := shareColumns(attr.ShareInfo)
	tag, err := s.pool.Exec(ctx, `
		UPDATE attributes SET
			content = $2, succeeds = $3, succeeded_by = $4,
			share_peer = $5, share_request = $6, share_source = $7,
			kind = $8, owner = $9, value_type = $10, attr_key = $11,
			valid_from = $12, valid_to = $13
		WHERE id = $1`,
		string(attr.ID), contentBytes,
		nullableID(attr.Succeeds), nullableID(attr.SucceededBy),
		peer, request, source,
		string(attr.Content.Kind), string(attr.Content.Owner), attr.Content.ValueType, attr.Content.Key,
		attr.Content.ValidFrom, attr.Content.ValidTo,
	)
	if err != nil {
		return fmt.Errorf("update attribute: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, attributeID id.AttributeID) (*models.LocalAttribute, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+attributeColumns+` FROM attributes WHERE id = $1`, string(attributeID))
	attr, err := scanAttribute(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find attribute by id: %w", err)
	}
	return attr, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.LocalAttribute, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Kind != "" {
		add("kind = $%d", string(filter.Kind))
	}
	if filter.Owner != "" {
		add("owner = $%d", string(filter.Owner))
	}
	if filter.ValueType != "" {
		add("value_type = $%d", filter.ValueType)
	}
	if filter.Key != "" {
		add("attr_key = $%d", filter.Key)
	}
	if filter.SharedWithPeer != "" {
		add("share_peer = $%d", string(filter.SharedWithPeer))
	}
	if filter.SourceAttribute != "" {
		add("share_source = $%d", string(filter.SourceAttribute))
	}
	if filter.OnlyOriginals {
		conds = append(conds, "share_peer IS NULL")
	}
	if filter.ValidAt != nil {
		add("(valid_from IS NULL OR valid_from <= $%d)", *filter.ValidAt)
		add("(valid_to IS NULL OR valid_to >= $%d)", *filter.ValidAt)
	}

	query := `SELECT ` + attributeColumns + ` FROM attributes`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attributes: %w", err)
	}
	defer rows.Close()

	var out []*models.LocalAttribute
	for rows.Next() {
		attr, err := scanAttribute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		out = append(out, attr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attributes: %w", err)
	}
	return out, nil
}

func scanAttribute(row pgx.Row) (*models.LocalAttribute, error) {
	var (
		attrID       string
		contentBytes []byte
		createdAt    time.Time
		succeeds     *string
		succeededBy  *string
		sharePeer    *string
		shareRequest *string
		shareSource  *string
	)
	if err := row.Scan(&attrID, &contentBytes, &createdAt, &succeeds, &succeededBy, &sharePeer, &shareRequest, &shareSource); err != nil {
		return nil, err
	}
	attr := &models.LocalAttribute{
		ID:          id.AttributeID(attrID),
		CreatedAt:   createdAt,
		Succeeds:    toID(succeeds),
		SucceededBy: toID(succeededBy),
	}
	if err := json.Unmarshal(contentBytes, &attr.Content); err != nil {
		return nil, fmt.Errorf("unmarshal attribute content: %w", err)
	}
	if sharePeer != nil {
		attr.ShareInfo = &models.ShareInfo{
			Peer:            id.Address(*sharePeer),
			SourceAttribute: toID(shareSource),
		}
		if shareRequest != nil {
			attr.ShareInfo.RequestReference = id.RequestID(*shareRequest)
		}
	}
	return attr, nil
}

func shareColumns(info *models.ShareInfo) (peer, request, source *string) {
	if info == nil {
		return nil, nil, nil
	}
	p := string(info.Peer)
	peer = &p
	if !info.RequestReference.IsNil() {
		r := string(info.RequestReference)
		request = &r
	}
	source = nullableID(info.SourceAttribute)
	return peer, request, source
}

func nullableID(v *id.AttributeID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toID(s *string) *id.AttributeID {
	if s == nil {
		return nil
	}
	v := id.AttributeID(*s)
	return &v
}
