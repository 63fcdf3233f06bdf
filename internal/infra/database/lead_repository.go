package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/pointhed/waitlist-api/internal/entity"
)

const pgUniqueViolation = "23505"

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Create inserts a new lead. phone_number carries a UNIQUE constraint; a
// conflict maps to ErrPhoneAlreadyExists so callers can take the
// already-requested path instead of racing on check-then-insert.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	metadata, err := json.Marshal(lead.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO leads (id, phone_number, country_code, raw_number, source, status, message_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.PhoneNumber,
		lead.CountryCode,
		lead.RawNumber,
		lead.Source,
		lead.Status,
		nullString(lead.MessageID),
		metadata,
		lead.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return entity.ErrPhoneAlreadyExists
		}
		log.Printf("❌ leads insert failed: %v", err)
		return err
	}

	return nil
}

func (r *LeadRepository) FindByPhone(ctx context.Context, phoneNumber string) (*entity.Lead, error) {
	query := `
		SELECT id, phone_number, country_code, raw_number, source, status, message_id, metadata, created_at
		FROM leads
		WHERE phone_number = $1
	`

	row := r.DB.QueryRowContext(ctx, query, phoneNumber)
	return scanLead(row)
}

func (r *LeadRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count)
	return count, err
}

// CountCreatedUpTo returns the waitlist position of a lead created at t:
// the number of leads created at or before that instant.
func (r *LeadRepository) CountCreatedUpTo(ctx context.Context, t time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE created_at <= $1`, t).Scan(&count)
	return count, err
}

// MergeMetadata applies a partial metadata update in a single atomic
// statement. Only fields present on the patch are written; concurrent merges
// for the same lead cannot lose each other's fields.
func (r *LeadRepository) MergeMetadata(ctx context.Context, id string, patch entity.LeadMetadata) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	query := `
		UPDATE leads
		SET metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb
		WHERE id = $1
	`

	result, err := r.DB.ExecContext(ctx, query, id, body)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrLeadNotFound
	}

	return nil
}

// FindNotifySubscribers returns every lead whose recorded role is notify_yes.
// Filtering out already-notified and opted-out leads happens in the batch job.
func (r *LeadRepository) FindNotifySubscribers(ctx context.Context) ([]*entity.Lead, error) {
	query := `
		SELECT id, phone_number, country_code, raw_number, source, status, message_id, metadata, created_at
		FROM leads
		WHERE metadata->>'role' = 'notify_yes'
		ORDER BY created_at
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

func (r *LeadRepository) DeleteByPhone(ctx context.Context, phoneNumber string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE phone_number = $1`, phoneNumber)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var messageID sql.NullString
	var metadata []byte

	err := row.Scan(
		&lead.ID,
		&lead.PhoneNumber,
		&lead.CountryCode,
		&lead.RawNumber,
		&lead.Source,
		&lead.Status,
		&messageID,
		&metadata,
		&lead.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, err
	}

	lead.MessageID = messageID.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &lead.Metadata); err != nil {
			log.Printf("⚠️ lead %s carries malformed metadata: %v", lead.ID, err)
		}
	}

	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
