package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artem13815/colorfit/pkg/history"
)

// HistoryRepository stores saved analyses per user.
type HistoryRepository struct {
	db DB
}

func NewHistoryRepository(db DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const historyColumns = `id, user_id, image_url, image_key, skin_tone, face_shape, colors, color_names, created_at`

func (r *HistoryRepository) Create(ctx context.Context, e history.Entry) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO history_entries (`+historyColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, e.ID, e.UserID, e.ImageURL, e.ImageKey, e.SkinTone, e.FaceShape, e.Colors, e.ColorNames, e.CreatedAt)
	return err
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
SELECT `+historyColumns+`
FROM history_entries
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []history.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *HistoryRepository) GetForUser(ctx context.Context, userID, id uuid.UUID) (history.Entry, error) {
	row := r.db.QueryRow(ctx, `
SELECT `+historyColumns+`
FROM history_entries WHERE id = $1 AND user_id = $2
`, id, userID)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return history.Entry{}, history.ErrNotFound
		}
		return history.Entry{}, err
	}
	return e, nil
}

func (r *HistoryRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM history_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return history.ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (history.Entry, error) {
	var e history.Entry
	if err := row.Scan(&e.ID, &e.UserID, &e.ImageURL, &e.ImageKey, &e.SkinTone, &e.FaceShape, &e.Colors, &e.ColorNames, &e.CreatedAt); err != nil {
		return history.Entry{}, err
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}
