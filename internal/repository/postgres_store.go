package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// SQLSTATE codes that mark a transaction as safe to retry.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// PostgresDocumentStore keeps documents as JSONB rows in the documents table.
type PostgresDocumentStore struct {
	pool        *pgxpool.Pool
	maxAttempts int
	logger      *zap.Logger
}

// NewPostgresDocumentStore instantiates the store. maxAttempts bounds transaction retries.
func NewPostgresDocumentStore(pool *pgxpool.Pool, maxAttempts int, logger *zap.Logger) *PostgresDocumentStore {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresDocumentStore{pool: pool, maxAttempts: maxAttempts, logger: logger}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *PostgresDocumentStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	return getDocument(ctx, s.pool, collection, id, false)
}

func getDocument(ctx context.Context, q querier, collection, id string, forUpdate bool) (Document, bool, error) {
	query := `SELECT data FROM documents WHERE collection=$1 AND id=$2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var raw []byte
	if err := q.QueryRow(ctx, query, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	doc, err := unmarshalDocument(raw)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *PostgresDocumentStore) Set(ctx context.Context, collection, id string, doc Document) error {
	return setDocument(ctx, s.pool, collection, id, doc)
}

func setDocument(ctx context.Context, q querier, collection, id string, doc Document) error {
	raw, err := marshalDocument(doc)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO documents (collection, id, data)
        VALUES ($1, $2, $3::jsonb)
        ON CONFLICT (collection, id) DO UPDATE SET data=EXCLUDED.data, updated_at=NOW()`
	if _, err := q.Exec(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresDocumentStore) Update(ctx context.Context, collection, id string, patch Document) error {
	raw, err := marshalDocument(patch)
	if err != nil {
		return err
	}
	const query = `
        UPDATE documents SET data = data || $3::jsonb, updated_at=NOW()
        WHERE collection=$1 AND id=$2`
	cmd, err := s.pool.Exec(ctx, query, collection, id, raw)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrDocumentNotFound)
	}
	return nil
}

func (s *PostgresDocumentStore) AddAutoID(ctx context.Context, collection string, doc Document) (string, error) {
	raw, err := marshalDocument(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	const query = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	if _, err := s.pool.Exec(ctx, query, collection, id, raw); err != nil {
		return "", fmt.Errorf("add %s: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresDocumentStore) List(ctx context.Context, collection string) ([]Document, error) {
	const query = `SELECT data FROM documents WHERE collection=$1 ORDER BY created_at, id`
	return s.queryDocuments(ctx, query, collection)
}

func (s *PostgresDocumentStore) QueryEquals(ctx context.Context, collection, field string, value any) ([]Document, error) {
	if field == DocumentIDField {
		id, ok := value.(string)
		if !ok {
			return []Document{}, nil
		}
		const query = `SELECT data FROM documents WHERE collection=$1 AND id=$2`
		return s.queryDocuments(ctx, query, collection, id)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", collection, field, err)
	}
	const query = `
        SELECT data FROM documents
        WHERE collection=$1 AND data->$2::text = $3::jsonb
        ORDER BY created_at, id`
	return s.queryDocuments(ctx, query, collection, field, string(raw))
}

func (s *PostgresDocumentStore) QueryIn(ctx context.Context, collection, field string, values []string) ([]Document, error) {
	if err := checkQueryIn(values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []Document{}, nil
	}

	if field == DocumentIDField {
		const query = `
            SELECT data FROM documents
            WHERE collection=$1 AND id = ANY($2)
            ORDER BY created_at, id`
		return s.queryDocuments(ctx, query, collection, values)
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", collection, field, err)
	}
	const query = `
        SELECT data FROM documents
        WHERE collection=$1 AND $3::jsonb @> jsonb_build_array(data->$2::text)
        ORDER BY created_at, id`
	return s.queryDocuments(ctx, query, collection, field, string(raw))
}

func (s *PostgresDocumentStore) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		doc, err := unmarshalDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresDocumentStore) ArrayUnion(ctx context.Context, collection, id, field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("array union %s.%s: %w", collection, field, err)
	}
	const query = `
        UPDATE documents SET data = jsonb_set(
            data,
            ARRAY[$3::text],
            CASE
                WHEN jsonb_typeof(data->$3::text) <> 'array' OR data->$3::text IS NULL
                    THEN jsonb_build_array($4::jsonb)
                WHEN data->$3::text @> jsonb_build_array($4::jsonb)
                    THEN data->$3::text
                ELSE (data->$3::text) || jsonb_build_array($4::jsonb)
            END,
            true), updated_at=NOW()
        WHERE collection=$1 AND id=$2`
	cmd, err := s.pool.Exec(ctx, query, collection, id, field, string(raw))
	if err != nil {
		return fmt.Errorf("array union %s/%s.%s: %w", collection, id, field, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrDocumentNotFound)
	}
	return nil
}

// RunTransaction runs fn in a serializable transaction and retries it when Postgres
// reports a serialization failure or deadlock.
func (s *PostgresDocumentStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		s.logger.Debug("retrying conflicting transaction", zap.Int("attempt", attempt), zap.Error(err))
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrTxConflict, s.maxAttempts, lastErr)
}

func (s *PostgresDocumentStore) runOnce(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresDocumentStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return s.pool.Ping(ctx)
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	return getDocument(ctx, t.tx, collection, id, true)
}

func (t *postgresTx) Set(ctx context.Context, collection, id string, doc Document) error {
	return setDocument(ctx, t.tx, collection, id, doc)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

func marshalDocument(doc Document) (string, error) {
	if doc == nil {
		doc = Document{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return string(raw), nil
}

func unmarshalDocument(raw []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}
