package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"clinicore/models"

	"github.com/go-redis/redis/v8"
)

const (
	agendaCachePrefix   = "agenda:"
	sweepReportKey      = "sweep:last_report"
	agendaCacheTTL      = 2 * time.Minute
	sweepReportCacheTTL = 24 * time.Hour
)

// buildAgenda projects all sessions of a date into dashboard rows. Pure
// derived view over the session store; it decides nothing and writes
// nothing.
func buildAgenda(sessions []models.Session, date string, now time.Time) *models.Agenda {
	entries := make([]models.AgendaEntry, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		entries = append(entries, models.AgendaEntry{
			SessionID:            s.ID,
			RoomID:               s.RoomID,
			PatientID:            s.PatientID,
			Type:                 s.Type,
			Status:               s.Status,
			ActiveSlot:           s.ActiveSlot,
			ActiveProfessionalID: s.ActiveProfessionalID(),
			ElapsedMinutes:       s.ElapsedMinutes(now),
			Date:                 s.Date,
			Start:                s.Start,
			End:                  s.End,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Start != entries[j].Start {
			return entries[i].Start < entries[j].Start
		}
		return entries[i].SessionID < entries[j].SessionID
	})
	return &models.Agenda{Date: date, GeneratedAt: now, Entries: entries}
}

func cacheAgenda(ctx context.Context, cache *redis.Client, agenda *models.Agenda) error {
	data, err := json.Marshal(agenda)
	if err != nil {
		return fmt.Errorf("failed to marshal agenda: %w", err)
	}
	if err := cache.Set(ctx, agendaCachePrefix+agenda.Date, data, agendaCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache agenda: %w", err)
	}
	return nil
}

func cachedAgenda(ctx context.Context, cache *redis.Client, date string) (*models.Agenda, error) {
	data, err := cache.Get(ctx, agendaCachePrefix+date).Result()
	if err != nil {
		return nil, err
	}
	var agenda models.Agenda
	if err := json.Unmarshal([]byte(data), &agenda); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached agenda: %w", err)
	}
	return &agenda, nil
}

func cacheSweepReport(ctx context.Context, cache *redis.Client, report *models.SweepReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal sweep report: %w", err)
	}
	if err := cache.Set(ctx, sweepReportKey, data, sweepReportCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache sweep report: %w", err)
	}
	return nil
}

func cachedSweepReport(ctx context.Context, cache *redis.Client) (*models.SweepReport, error) {
	data, err := cache.Get(ctx, sweepReportKey).Result()
	if err != nil {
		return nil, err
	}
	var report models.SweepReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached sweep report: %w", err)
	}
	return &report, nil
}
