package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"surgical-records/internal/domain/records"
)

const DefaultSlotName = "records"

// SlotRepo guarda el blob del store como una fila de record_slots.
// Write hace upsert: la fila se sobrescribe entera en cada mutación.
type SlotRepo struct {
	db   *sql.DB
	name string
}

func NewSlotRepo(db *sql.DB, name string) *SlotRepo {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSlotName
	}
	return &SlotRepo{db: db, name: name}
}

var _ records.Medium = (*SlotRepo)(nil)

// EnsureSchema crea la tabla si no existe.
func (r *SlotRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS record_slots (
			name       TEXT PRIMARY KEY,
			blob       BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (r *SlotRepo) Read(ctx context.Context) ([]byte, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT blob
		FROM record_slots
		WHERE name = $1
	`, r.name)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return blob, nil
}

func (r *SlotRepo) Write(ctx context.Context, blob []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO record_slots (name, blob, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET blob = EXCLUDED.blob,
		    updated_at = EXCLUDED.updated_at
	`, r.name, blob)
	return err
}
