package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Kiandes/P27-firecard/internal/model"
)

// ExportedEventRepository is the device-calendar capability: it records the
// sanitized events exported from appointments. Create is an upsert keyed by
// the hashed event id, so re-exporting an appointment updates the existing
// entry instead of duplicating it.
type ExportedEventRepository interface {
	Create(ctx context.Context, event model.CalendarEvent) (*model.CalendarEvent, error)
	FindByID(ctx context.Context, id string) (*model.CalendarEvent, error)
	FindByCalendarID(ctx context.Context, calendarID string) ([]model.CalendarEvent, error)
}

type exportedEventRepo struct {
	db *sqlx.DB
}

func NewExportedEventRepository(db *sqlx.DB) ExportedEventRepository {
	return &exportedEventRepo{db: db}
}

func (r *exportedEventRepo) Create(ctx context.Context, event model.CalendarEvent) (*model.CalendarEvent, error) {
	var created model.CalendarEvent
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO exported_events (id, calendar_id, title, start_date, end_date, all_day, availability, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			calendar_id = EXCLUDED.calendar_id,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			exported_at = NOW()
		RETURNING id, calendar_id, title, start_date, end_date, all_day, availability, status
	`, event.ID, event.CalendarID, event.Title, event.StartDate, event.EndDate,
		event.AllDay, event.Availability, event.Status)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *exportedEventRepo) FindByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	err := r.db.GetContext(ctx, &event, `
		SELECT id, calendar_id, title, start_date, end_date, all_day, availability, status
		FROM exported_events WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *exportedEventRepo) FindByCalendarID(ctx context.Context, calendarID string) ([]model.CalendarEvent, error) {
	events := []model.CalendarEvent{}
	err := r.db.SelectContext(ctx, &events, `
		SELECT id, calendar_id, title, start_date, end_date, all_day, availability, status
		FROM exported_events
		WHERE calendar_id = $1
		ORDER BY start_date
	`, calendarID)
	if err != nil {
		return nil, err
	}
	return events, nil
}
