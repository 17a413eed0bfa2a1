package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/artem13815/colorfit/pkg/auth"
	"github.com/artem13815/colorfit/pkg/metrics"
)

// PendingRepository implements auth.PendingRepository on the
// pending_verifications table, one row per email.
type PendingRepository struct {
	db DB
}

func NewPendingRepository(db DB) *PendingRepository {
	return &PendingRepository{db: db}
}

func (r *PendingRepository) Upsert(ctx context.Context, p auth.PendingVerification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO pending_verifications (email, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
	`, p.Email, p.Code, p.ExpiresAt, p.CreatedAt)
	return err
}

func (r *PendingRepository) Get(ctx context.Context, email string) (auth.PendingVerification, error) {
	row := r.db.QueryRow(ctx, `
		SELECT email, code, expires_at, created_at
		FROM pending_verifications WHERE email = $1
	`, email)
	var p auth.PendingVerification
	if err := row.Scan(&p.Email, &p.Code, &p.ExpiresAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.PendingVerification{}, auth.ErrNotFound
		}
		return auth.PendingVerification{}, err
	}
	p.ExpiresAt = p.ExpiresAt.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (r *PendingRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		DELETE FROM pending_verifications WHERE email = $1 AND code = $2
	`, email, code)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// DeleteExpired removes records whose expiry is before cutoff.
func (r *PendingRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM pending_verifications WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// RunSweeper deletes records older than their expiry plus retention every
// interval until ctx is done.
func (r *PendingRepository) RunSweeper(ctx context.Context, interval, retention time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, interval)
			n, err := r.DeleteExpired(sweepCtx, now.Add(-retention))
			cancel()
			if err != nil {
				logger.WarnContext(ctx, "sweep pending verifications failed", "error", err)
				continue
			}
			if n > 0 {
				metrics.RecordSwept(n)
				logger.DebugContext(ctx, "swept pending verifications", "removed", n)
			}
		}
	}
}
