package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"linetrack-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Get returns nil, nil when the user has no row yet.
func (s *Store) Get(ctx context.Context, userKey string) (*Preferences, error) {
	return get(ctx, s.db, userKey)
}

// Put upserts and reads the row back in one transaction (updated_at is the DB clock)
func (s *Store) Put(ctx context.Context, p Preferences) (*Preferences, error) {
	favs, err := json.Marshal(p.FavoriteDashboards)
	if err != nil {
		return nil, fmt.Errorf("encode favorites: %w", err)
	}
	var lastDate sql.NullString
	if p.LastDate != "" {
		lastDate = sql.NullString{String: p.LastDate, Valid: true}
	}

	var out *Preferences
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const q = `
		INSERT INTO console_preferences (user_key, favorite_dashboards, last_date, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP(3))
		ON DUPLICATE KEY UPDATE
			favorite_dashboards = VALUES(favorite_dashboards),
			last_date = VALUES(last_date),
			updated_at = VALUES(updated_at)`
		if _, err := tx.ExecContext(ctx, q, p.UserKey, string(favs), lastDate); err != nil {
			return err
		}
		got, err := get(ctx, tx, p.UserKey)
		if err != nil {
			return err
		}
		if got == nil {
			return errors.New("preferences row missing after upsert")
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func get(ctx context.Context, q db.DBTX, userKey string) (*Preferences, error) {
	const sel = `
	SELECT user_key, favorite_dashboards, last_date, updated_at
	FROM console_preferences WHERE user_key = ?`
	var (
		p        Preferences
		favs     string
		lastDate sql.NullTime
		updated  time.Time
	)
	if err := q.QueryRowContext(ctx, sel, userKey).Scan(&p.UserKey, &favs, &lastDate, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	// malformed JSON reads as no favorites
	if err := json.Unmarshal([]byte(favs), &p.FavoriteDashboards); err != nil {
		p.FavoriteDashboards = []string{}
	}
	if lastDate.Valid {
		p.LastDate = lastDate.Time.Format(dateLayout)
	}
	p.UpdatedAt = updated
	return &p, nil
}
