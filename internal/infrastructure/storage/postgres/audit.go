package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"tudogestao/internal/core/id"
	"tudogestao/internal/domain/audit"
)

type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

// compressThreshold is the size above which change details are stored zstd compressed.
const compressThreshold = 8 * 1024

var (
	_ audit.Sink   = (*AuditStore)(nil)
	_ audit.Reader = (*AuditStore)(nil)
)

// AuditStore writes audit entries to sys_audit. Large details are compressed.
type AuditStore struct {
	txManager *TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditStore{txManager: txManager, encoder: encoder, decoder: decoder}, nil
}

// Write implements audit.Sink. It uses the pool directly: the recorder calls
// it after the audited transaction has finished.
func (s *AuditStore) Write(ctx context.Context, e audit.Entry) error {
	changes, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	var compressed []byte
	algo := compressionNone
	if len(changes) > compressThreshold {
		compressed = s.encoder.EncodeAll(changes, nil)
		changes = nil
		algo = compressionZstd
	}

	sql, args, err := psql().Insert("sys_audit").
		Columns("id", "company_id", "entity_type", "entity_id", "action", "user_id", "user_email",
			"changes", "changes_compressed", "compression_algo", "created_at").
		Values(e.ID, e.CompanyID, e.EntityType, e.EntityID, string(e.Action), e.UserID, e.UserEmail,
			changes, compressed, string(algo), e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := s.txManager.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

type auditRow struct {
	ID                id.ID           `db:"id"`
	CompanyID         id.ID           `db:"company_id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            string          `db:"action"`
	UserID            string          `db:"user_id"`
	UserEmail         string          `db:"user_email"`
	Changes           []byte          `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   compressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// History implements audit.Reader.
func (s *AuditStore) History(ctx context.Context, companyID id.ID, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sql, args, err := psql().
		Select("id", "company_id", "entity_type", "entity_id", "action", "user_id", "user_email",
			"changes", "changes_compressed", "compression_algo", "created_at").
		From("sys_audit").
		Where(sq.Eq{"company_id": companyID, "entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		raw := r.Changes
		if r.CompressionAlgo == compressionZstd && len(r.ChangesCompressed) > 0 {
			raw, err = s.decoder.DecodeAll(r.ChangesCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress audit details: %w", err)
			}
		}

		var details map[string]any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}

		entries = append(entries, audit.Entry{
			ID:         r.ID,
			CompanyID:  r.CompanyID,
			UserID:     r.UserID,
			UserEmail:  r.UserEmail,
			Action:     audit.Action(r.Action),
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Details:    details,
			CreatedAt:  r.CreatedAt,
		})
	}
	return entries, nil
}
