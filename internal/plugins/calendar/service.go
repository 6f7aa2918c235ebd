package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/keyxmakerx/calview/internal/apperror"
)

// EventService is the host side of the widget: it owns the canonical event
// list and receives the add, update and delete intents.
type EventService interface {
	Add(ctx context.Context, evt Event) (*Event, error)
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Event, error)

	// Apply runs controller effects in order and stops at the first error.
	Apply(ctx context.Context, effects []Effect) error

	// Import adds events that pass validation and whose IDs are not taken.
	Import(ctx context.Context, events []Event) (ImportResult, error)
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Invalid int `json:"invalid"`
}

// eventService is the default EventService implementation.
type eventService struct {
	repo EventRepository
	opts Options
	ids  func() string
}

// NewEventService creates an EventService backed by the given repository.
// ids supplies IDs for added events that arrive without one.
func NewEventService(repo EventRepository, opts Options, ids func() string) EventService {
	return &eventService{repo: repo, opts: opts, ids: ids}
}

// Add validates and stores a new event.
func (s *eventService) Add(ctx context.Context, evt Event) (*Event, error) {
	evt = NormalizeEvent(evt, s.opts)
	if err := ValidateEvent(evt, s.opts).Err(); err != nil {
		return nil, err
	}
	if evt.ID == "" {
		evt.ID = s.ids()
	}

	if err := s.repo.Create(ctx, &evt); err != nil {
		return nil, fmt.Errorf("adding event: %w", err)
	}

	slog.Info("event added",
		slog.String("event_id", evt.ID),
		slog.Time("start", evt.Start),
		slog.Time("end", evt.End),
	)
	return &evt, nil
}

// Update applies the patch to the stored event and re-validates the result.
func (s *eventService) Update(ctx context.Context, id string, patch EventPatch) (*Event, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return existing, nil
	}

	updated := NormalizeEvent(patch.Apply(*existing), s.opts)
	updated.ID = existing.ID
	if err := ValidateEvent(updated, s.opts).Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("updating event: %w", err)
	}

	slog.Info("event updated",
		slog.String("event_id", id),
		slog.Any("fields", patchFields(patch)),
	)
	return &updated, nil
}

// Delete removes an event by ID.
func (s *eventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("event deleted", slog.String("event_id", id))
	return nil
}

// Get returns one event.
func (s *eventService) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every event in insertion order.
func (s *eventService) List(ctx context.Context) ([]Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// ListRange returns the events that fall in or cover [from, to].
func (s *eventService) ListRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	if to.Before(from) {
		return nil, apperror.NewBadRequest("range end is before range start")
	}
	events, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing events in range: %w", err)
	}
	return events, nil
}

// Apply runs effects in order.
func (s *eventService) Apply(ctx context.Context, effects []Effect) error {
	for _, eff := range effects {
		var err error
		switch eff.Kind {
		case EffectAdd:
			if eff.Event == nil {
				return apperror.NewMissingContext()
			}
			_, err = s.Add(ctx, *eff.Event)
		case EffectUpdate:
			_, err = s.Update(ctx, eff.ID, eff.Patch)
		case EffectDelete:
			err = s.Delete(ctx, eff.ID)
		default:
			err = apperror.NewInternal(fmt.Errorf("unknown effect %q", eff.Kind))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Import stores each valid event. Invalid events and IDs already present
// are counted and skipped; any other storage error aborts the import.
func (s *eventService) Import(ctx context.Context, events []Event) (ImportResult, error) {
	var res ImportResult
	for _, evt := range events {
		_, err := s.Add(ctx, evt)
		switch {
		case err == nil:
			res.Added++
		case isAppError(err, http.StatusConflict):
			res.Skipped++
		case isAppError(err, http.StatusUnprocessableEntity):
			res.Invalid++
		default:
			return res, err
		}
	}

	slog.Info("events imported",
		slog.Int("added", res.Added),
		slog.Int("skipped", res.Skipped),
		slog.Int("invalid", res.Invalid),
	)
	return res, nil
}

func isAppError(err error, code int) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// patchFields lists the names of the fields a patch sets, for logging.
func patchFields(p EventPatch) []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Start != nil {
		fields = append(fields, "startDate")
	}
	if p.End != nil {
		fields = append(fields, "endDate")
	}
	if p.Color != nil {
		fields = append(fields, "color")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	return fields
}
