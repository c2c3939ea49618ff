package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Kiandes/P27-firecard/internal/repository"
	"github.com/Kiandes/P27-firecard/internal/service"
)

// CalendarSyncJob periodically re-exports the upcoming appointments into the
// configured device calendar, so events stay current when appointments move
// or get cancelled between exports. It runs only while a session exists and
// sync is enabled in the preferences; otherwise a tick is a no-op.
type CalendarSyncJob struct {
	appointments *service.AppointmentService
	store        repository.SessionStore
	prefsRepo    repository.PreferencesRepository
	interval     time.Duration
	done         chan struct{}
}

func NewCalendarSyncJob(
	appointments *service.AppointmentService,
	store repository.SessionStore,
	prefsRepo repository.PreferencesRepository,
	interval time.Duration,
) *CalendarSyncJob {
	return &CalendarSyncJob{
		appointments: appointments,
		store:        store,
		prefsRepo:    prefsRepo,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (j *CalendarSyncJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("calendar sync job started")
}

func (j *CalendarSyncJob) Stop() {
	close(j.done)
	log.Info().Msg("calendar sync job stopped")
}

func (j *CalendarSyncJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sync()
		}
	}
}

func (j *CalendarSyncJob) sync() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	prefs, err := j.prefsRepo.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("calendar sync: failed to load preferences")
		return
	}
	if !prefs.CalendarSyncEnabled || prefs.CalendarID == "" {
		return
	}

	session, err := j.store.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("calendar sync: failed to load session")
		return
	}
	if session == nil {
		return
	}

	appointments, err := j.appointments.FutureAppointments(ctx, time.Now())
	if err != nil {
		log.Warn().Err(err).Msg("calendar sync: failed to fetch appointments")
		return
	}

	exported := 0
	for _, appointment := range appointments {
		if appointment.ID == "" || appointment.Start == nil {
			continue
		}
		if _, err := j.appointments.Export(ctx, appointment, nil); err != nil {
			log.Warn().Err(err).Str("appointmentId", appointment.ID).Msg("calendar sync: export failed")
			continue
		}
		exported++
	}

	if exported > 0 {
		log.Info().Int("count", exported).Msg("calendar sync: exported appointments")
	}
}
