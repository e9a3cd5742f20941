package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nabil/meshbari/internal/model"
)

// PostgresTestimonialRepo is the PostgreSQL testimonial repository.
type PostgresTestimonialRepo struct {
	db *sql.DB
}

// NewPostgresTestimonialRepo builds a PostgresTestimonialRepo.
func NewPostgresTestimonialRepo(db *sql.DB) *PostgresTestimonialRepo {
	return &PostgresTestimonialRepo{db: db}
}

// Create inserts a testimonial (unapproved).
func (r *PostgresTestimonialRepo) Create(ctx context.Context, t *model.Testimonial) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO testimonials (id, user_id, body, approved, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.UserID, t.Body, t.Approved, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert testimonial: %w", err)
	}
	return nil
}

func (r *PostgresTestimonialRepo) list(ctx context.Context, query string) ([]*model.Testimonial, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	var testimonials []*model.Testimonial
	for rows.Next() {
		t := &model.Testimonial{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Body, &t.Approved, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		testimonials = append(testimonials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate testimonials: %w", err)
	}
	return testimonials, nil
}

// ListApproved returns approved testimonials, newest first.
func (r *PostgresTestimonialRepo) ListApproved(ctx context.Context) ([]*model.Testimonial, error) {
	return r.list(ctx,
		`SELECT id, user_id, body, approved, created_at
		 FROM testimonials WHERE approved = TRUE ORDER BY created_at DESC`)
}

// ListAll returns all testimonials, newest first.
func (r *PostgresTestimonialRepo) ListAll(ctx context.Context) ([]*model.Testimonial, error) {
	return r.list(ctx,
		`SELECT id, user_id, body, approved, created_at
		 FROM testimonials ORDER BY created_at DESC`)
}

// SetApproved updates a testimonial's approved flag.
func (r *PostgresTestimonialRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE testimonials SET approved = $2 WHERE id = $1`, id, approved)
	if err != nil {
		return fmt.Errorf("failed to update testimonial: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("testimonial not found: %s", id)
	}
	return nil
}

// Delete removes a testimonial.
func (r *PostgresTestimonialRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TestimonialRepository = (*PostgresTestimonialRepo)(nil)

// PostgresFlagRepo is the PostgreSQL flag repository.
type PostgresFlagRepo struct {
	db *sql.DB
}

// NewPostgresFlagRepo builds a PostgresFlagRepo.
func NewPostgresFlagRepo(db *sql.DB) *PostgresFlagRepo {
	return &PostgresFlagRepo{db: db}
}

// FindByID fetches the flag with the given ID. Returns nil when not found.
func (r *PostgresFlagRepo) FindByID(ctx context.Context, id string) (*model.Flag, error) {
	f := &model.Flag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, listing_id, reporter_id, reason, status, created_at, resolved_at
		 FROM flags WHERE id = $1`, id,
	).Scan(&f.ID, &f.ListingID, &f.ReporterID, &f.Reason, &f.Status, &f.CreatedAt, &f.ResolvedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find flag: %w", err)
	}
	return f, nil
}

// Create inserts a flag with status open.
func (r *PostgresFlagRepo) Create(ctx context.Context, f *model.Flag) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO flags (id, listing_id, reporter_id, reason, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.ListingID, f.ReporterID, f.Reason, f.Status, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert flag: %w", err)
	}
	return nil
}

// ListByStatus returns flags of the given status, oldest first.
func (r *PostgresFlagRepo) ListByStatus(ctx context.Context, status model.FlagStatus) ([]*model.Flag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, listing_id, reporter_id, reason, status, created_at, resolved_at
		 FROM flags WHERE status = $1 ORDER BY created_at ASC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	defer rows.Close()

	var flags []*model.Flag
	for rows.Next() {
		f := &model.Flag{}
		if err := rows.Scan(
			&f.ID, &f.ListingID, &f.ReporterID, &f.Reason,
			&f.Status, &f.CreatedAt, &f.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flags: %w", err)
	}
	return flags, nil
}

// Resolve sets the flag's final status and resolution time.
func (r *PostgresFlagRepo) Resolve(ctx context.Context, id string, status model.FlagStatus, resolvedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE flags SET status = $2, resolved_at = $3 WHERE id = $1`,
		id, status, resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve flag: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("flag not found: %s", id)
	}
	return nil
}

// DeleteResolvedBefore removes non-open flags resolved before cutoff.
func (r *PostgresFlagRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM flags WHERE status <> 'open' AND resolved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete resolved flags: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ FlagRepository = (*PostgresFlagRepo)(nil)

// PostgresAdminLogRepo is the PostgreSQL admin audit log repository.
type PostgresAdminLogRepo struct {
	db *sql.DB
}

// NewPostgresAdminLogRepo builds a PostgresAdminLogRepo.
func NewPostgresAdminLogRepo(db *sql.DB) *PostgresAdminLogRepo {
	return &PostgresAdminLogRepo{db: db}
}

// Create inserts an audit entry.
func (r *PostgresAdminLogRepo) Create(ctx context.Context, entry *model.AdminLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_logs (id, admin_id, action, target_id, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.AdminID, entry.Action, entry.TargetID, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin log: %w", err)
	}
	return nil
}

// ListRecent returns the most recent entries, newest first.
func (r *PostgresAdminLogRepo) ListRecent(ctx context.Context, limit int) ([]*model.AdminLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, admin_id, action, target_id, detail, created_at
		 FROM admin_logs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin logs: %w", err)
	}
	defer rows.Close()

	var entries []*model.AdminLog
	for rows.Next() {
		entry := &model.AdminLog{}
		if err := rows.Scan(
			&entry.ID, &entry.AdminID, &entry.Action,
			&entry.TargetID, &entry.Detail, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan admin log: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin logs: %w", err)
	}
	return entries, nil
}

// compile-time interface check
var _ AdminLogRepository = (*PostgresAdminLogRepo)(nil)
