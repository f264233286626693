// Package ledger owns the single running timer. Every transition happens inside one
// store transaction, so at most one entry is ever open.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/models"
)

// AutoStopDescription is written on an entry closed because another timer started.
const AutoStopDescription = "auto-stopped"

var (
	ErrNotRunning    = errors.New("no timer is running")
	ErrEntryMismatch = errors.New("entry is not the running timer")
)

type Ledger struct {
	db  database.DB
	now func() time.Time
	log *slog.Logger
}

type Option func(*Ledger)

func WithNow(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

func New(db database.DB, opts ...Option) *Ledger {
	l := &Ledger{
		db:  db,
		now: time.Now,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start opens a timer on projectID. A running timer is closed first with the same
// instant as its end and AutoStopDescription as its description.
func (l *Ledger) Start(ctx context.Context, projectID string) (*models.TimeEntry, error) {
	var started *models.TimeEntry
	err := l.db.WithTx(ctx, func(tx database.DB) error {
		now := l.now().UTC()

		running, err := tx.GetRunningTimeEntry(ctx)
		if err != nil {
			return fmt.Errorf("failed to check for running timer: %w", err)
		}
		if running != nil {
			desc := AutoStopDescription
			if _, err := tx.StopTimeEntry(ctx, running.ID, now, &desc); err != nil {
				return fmt.Errorf("failed to stop running timer: %w", err)
			}
			l.log.Info("auto-stopped timer",
				slog.String("entry_id", running.ID),
				slog.String("project", running.ProjectName))
		}

		started, err = tx.CreateTimeEntry(ctx, projectID, now, nil, nil)
		if err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Debug("timer started", slog.String("entry_id", started.ID), slog.String("project_id", projectID))
	return started, nil
}

// Stop closes the running timer. entryID must name it; description, when non-nil,
// replaces the entry's description.
func (l *Ledger) Stop(ctx context.Context, entryID string, description *string) (*models.TimeEntry, error) {
	var stopped *models.TimeEntry
	err := l.db.WithTx(ctx, func(tx database.DB) error {
		running, err := tx.GetRunningTimeEntry(ctx)
		if err != nil {
			return fmt.Errorf("failed to check for running timer: %w", err)
		}
		if running == nil {
			return ErrNotRunning
		}
		if running.ID != entryID {
			return fmt.Errorf("%w: %s", ErrEntryMismatch, entryID)
		}

		stopped, err = tx.StopTimeEntry(ctx, running.ID, l.now().UTC(), description)
		if err != nil {
			return fmt.Errorf("failed to stop timer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Debug("timer stopped", slog.String("entry_id", stopped.ID), slog.Duration("duration", stopped.Duration()))
	return stopped, nil
}

// Running returns the open entry, or nil when idle.
func (l *Ledger) Running(ctx context.Context) (*models.TimeEntry, error) {
	entry, err := l.db.GetRunningTimeEntry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get running timer: %w", err)
	}
	return entry, nil
}
