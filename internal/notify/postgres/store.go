package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"poagov/internal/model"
)

const schema = `
	CREATE TABLE IF NOT EXISTS ballot_notifications (
		network       TEXT        NOT NULL,
		version       TEXT        NOT NULL,
		contract_type TEXT        NOT NULL,
		ballot_id     BIGINT      NOT NULL,
		block_number  BIGINT      NOT NULL,
		log_index     BIGINT      NOT NULL,
		tx_hash       TEXT        NOT NULL,
		start_time    TIMESTAMPTZ NOT NULL,
		end_time      TIMESTAMPTZ NOT NULL,
		memo          TEXT        NOT NULL,
		payload       JSONB       NOT NULL,
		generated_at  TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (network, version, contract_type, ballot_id)
	)
`

const insertNotification = `
	INSERT INTO ballot_notifications (
		network, version, contract_type, ballot_id, block_number, log_index, tx_hash,
		start_time, end_time, memo, payload, generated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (network, version, contract_type, ballot_id) DO NOTHING
`

// Store archives notifications in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// EnsureSchema creates the notification table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Dispatch stores one notification; a ballot already stored is left unchanged.
func (s *Store) Dispatch(ctx context.Context, n model.Notification) error {
	args, err := rowArgs(n)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, insertNotification, args...); err != nil {
		return fmt.Errorf("insert notification %s: %w", n.Key(), err)
	}
	return nil
}

func rowArgs(n model.Notification) ([]interface{}, error) {
	payload, err := json.Marshal(n.Event.Proposal)
	if err != nil {
		return nil, fmt.Errorf("marshal proposal: %w", err)
	}
	e := n.Event
	return []interface{}{
		n.Network.String(),
		n.Version.String(),
		e.Contract.String(),
		int64(e.BallotID),
		int64(n.BlockNumber),
		int64(e.LogIndex),
		e.TxHash.Hex(),
		e.StartTime,
		e.EndTime,
		e.Memo,
		payload,
		n.GeneratedAt,
	}, nil
}
