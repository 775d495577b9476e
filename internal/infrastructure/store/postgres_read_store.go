package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/example/storefront-cart/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface using PostgreSQL
type PostgresReadStore struct {
	db *sql.DB
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

// EnsureSchema creates the activity table if missing
func (rs *PostgresReadStore) EnsureSchema(ctx context.Context) error {
	_, err := rs.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS read_cart_activity (
			cart_id    TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func (rs *PostgresReadStore) Get(cartID string) (*readmodel.CartActivityReadModel, bool) {
	var data []byte
	err := rs.db.QueryRow(`SELECT data FROM read_cart_activity WHERE cart_id = $1`, cartID).Scan(&data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[PostgresReadStore] Error getting cart activity: %v", err)
		}
		return nil, false
	}

	var a readmodel.CartActivityReadModel
	if err := json.Unmarshal(data, &a); err != nil {
		log.Printf("[PostgresReadStore] Error decoding cart activity %s: %v", cartID, err)
		return nil, false
	}
	return &a, true
}

func (rs *PostgresReadStore) GetAll() []*readmodel.CartActivityReadModel {
	rows, err := rs.db.Query(`SELECT data FROM read_cart_activity ORDER BY cart_id`)
	if err != nil {
		log.Printf("[PostgresReadStore] Error getting all cart activity: %v", err)
		return nil
	}
	defer rows.Close()

	var items []*readmodel.CartActivityReadModel
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			log.Printf("[PostgresReadStore] Error scanning cart activity: %v", err)
			continue
		}
		var a readmodel.CartActivityReadModel
		if err := json.Unmarshal(data, &a); err != nil {
			log.Printf("[PostgresReadStore] Error decoding cart activity: %v", err)
			continue
		}
		items = append(items, &a)
	}
	return items
}

// Upsert reads the row under a row lock and writes the updated model in
// the same transaction.
func (rs *PostgresReadStore) Upsert(cartID string, updateFn func(current *readmodel.CartActivityReadModel) *readmodel.CartActivityReadModel) {
	tx, err := rs.db.Begin()
	if err != nil {
		log.Printf("[PostgresReadStore] Error starting transaction: %v", err)
		return
	}
	defer tx.Rollback()

	current := &readmodel.CartActivityReadModel{CartID: cartID}
	var data []byte
	err = tx.QueryRow(`SELECT data FROM read_cart_activity WHERE cart_id = $1 FOR UPDATE`, cartID).Scan(&data)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, current); err != nil {
			log.Printf("[PostgresReadStore] Discarding undecodable activity for %s: %v", cartID, err)
			current = &readmodel.CartActivityReadModel{CartID: cartID}
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		log.Printf("[PostgresReadStore] Error loading cart activity: %v", err)
		return
	}

	updated := updateFn(current)
	if updated == nil {
		return
	}
	data, err = json.Marshal(updated)
	if err != nil {
		log.Printf("[PostgresReadStore] Error encoding cart activity: %v", err)
		return
	}

	_, err = tx.Exec(`
		INSERT INTO read_cart_activity (cart_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`, cartID, data, time.Now())
	if err != nil {
		log.Printf("[PostgresReadStore] Error setting cart activity: %v", err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("[PostgresReadStore] Error committing cart activity: %v", err)
	}
}
