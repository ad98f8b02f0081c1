package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/courtsync/courtsync/internal/domain/rawdata"
)

const upsertRawPayloadQuery = `
INSERT INTO raw_api_payloads (
    source, entity_type, entity_key, season, endpoint, payload, payload_hash, fetched_at
) VALUES (
    :source, :entity_type, :entity_key, :season, :endpoint, :payload, :payload_hash, :fetched_at
)
ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    season = EXCLUDED.season,
    endpoint = EXCLUDED.endpoint,
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at
WHERE raw_api_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash`

// RawPayloadRepository archives raw API responses. The upsert skips
// rewriting rows whose payload hash is unchanged, so repeated runs
// over final seasons leave the table untouched.
type RawPayloadRepository struct {
	db *sqlx.DB
}

func NewRawPayloadRepository(db *sqlx.DB) *RawPayloadRepository {
	return &RawPayloadRepository{db: db}
}

func (r *RawPayloadRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := rawPayloadInsertModel{
			Source:      item.Source,
			EntityType:  item.EntityType,
			EntityKey:   item.EntityKey,
			Season:      item.Season,
			Endpoint:    item.Endpoint,
			Payload:     item.PayloadJSON,
			PayloadHash: item.PayloadHash,
			FetchedAt:   item.FetchedAt,
		}
		if _, err := tx.NamedExecContext(ctx, upsertRawPayloadQuery, insertModel); err != nil {
			return fmt.Errorf("upsert raw payload entity=%s key=%s: %w", item.EntityType, item.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}

	return nil
}

type rawPayloadInsertModel struct {
	Source      string    `db:"source"`
	EntityType  string    `db:"entity_type"`
	EntityKey   string    `db:"entity_key"`
	Season      string    `db:"season"`
	Endpoint    string    `db:"endpoint"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}
