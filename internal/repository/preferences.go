package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Kiandes/P27-firecard/internal/model"
)

// PreferencesRepository persists the single row of UI preference state.
type PreferencesRepository interface {
	Get(ctx context.Context) (*model.Preferences, error)
	Put(ctx context.Context, prefs model.Preferences) error
}

type preferencesRepo struct {
	db *sqlx.DB
}

func NewPreferencesRepository(db *sqlx.DB) PreferencesRepository {
	return &preferencesRepo{db: db}
}

func (r *preferencesRepo) Get(ctx context.Context) (*model.Preferences, error) {
	var prefs model.Preferences
	err := r.db.GetContext(ctx, &prefs, `
		SELECT calendar_id, calendar_sync_enabled FROM preferences WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		// Defaults before the user ever touched settings.
		return &model.Preferences{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepo) Put(ctx context.Context, prefs model.Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (id, calendar_id, calendar_sync_enabled)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			calendar_id = EXCLUDED.calendar_id,
			calendar_sync_enabled = EXCLUDED.calendar_sync_enabled
	`, prefs.CalendarID, prefs.CalendarSyncEnabled)
	return err
}
