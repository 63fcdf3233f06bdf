package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/pointhed/waitlist-api/internal/entity"
)

type WaitlistRepository struct {
	DB *sql.DB
}

func NewWaitlistRepository(db *sql.DB) *WaitlistRepository {
	return &WaitlistRepository{DB: db}
}

// Create inserts a signup. email is UNIQUE; a conflict maps to
// ErrEmailAlreadyExists, which intake treats as an idempotent success.
func (r *WaitlistRepository) Create(ctx context.Context, entry *entity.WaitlistEntry) error {
	query := `
		INSERT INTO waitlist (id, email, source, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.Email,
		entry.Source,
		entry.Status,
		entry.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return entity.ErrEmailAlreadyExists
		}
		log.Printf("❌ waitlist insert failed: %v", err)
		return err
	}

	return nil
}

func (r *WaitlistRepository) FindByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error) {
	query := `
		SELECT id, email, source, status, created_at
		FROM waitlist
		WHERE email = $1
	`

	var entry entity.WaitlistEntry
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&entry.ID,
		&entry.Email,
		&entry.Source,
		&entry.Status,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrWaitlistEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

func (r *WaitlistRepository) CountCreatedUpTo(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM waitlist WHERE created_at <= $1`, t).Scan(&count)
	return count, err
}
