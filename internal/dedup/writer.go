package dedup

import (
	"context"
	"errors"
	"fmt"

	"twse-announcements/internal/entity"
	"twse-announcements/pkg/logger"
)

// ErrNotFound is what a Store returns from FindByKey when nothing matches.
var ErrNotFound = errors.New("announcement not found")

// Store is the persistence contract the writer needs. Storage failures are
// returned unchanged to the caller.
type Store interface {
	FindByKey(ctx context.Context, key entity.AnnouncementKey) (*entity.Announcement, error)
	Create(ctx context.Context, a *entity.Announcement) error
	Update(ctx context.Context, a *entity.Announcement) error
	ReplaceByQueryDate(ctx context.Context, queryDate string, batch []entity.Announcement) (deleted int64, err error)
}

// Result counts what a write did.
type Result struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Deleted  int `json:"deleted"`

	// New holds the records that did not exist before this write.
	New []entity.Announcement `json:"-"`
}

// Writer applies a Mode to a batch.
type Writer struct {
	store  Store
	logger *logger.Logger
}

// NewWriter creates a Writer over store.
func NewWriter(store Store, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Writer{store: store, logger: log}
}

// Write tags every record with queryDate, strips raw markup and stores the
// batch under mode. Upsert is idempotent: replaying a batch changes neither
// record count nor content.
func (w *Writer) Write(ctx context.Context, mode Mode, queryDate string, batch []entity.Announcement) (*Result, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	prepared := Prepare(queryDate, batch)
	result := &Result{}

	if mode == ModeReplace {
		deleted, err := w.store.ReplaceByQueryDate(ctx, queryDate, prepared)
		if err != nil {
			return nil, fmt.Errorf("failed to replace batch for %s: %w", queryDate, err)
		}
		result.Deleted = int(deleted)
		result.Inserted = len(prepared)
		result.New = prepared
		w.logger.Info("Replaced announcement batch",
			logger.StringField("query_date", queryDate),
			logger.IntField("deleted", result.Deleted),
			logger.IntField("inserted", result.Inserted))
		return result, nil
	}

	for i := range prepared {
		candidate := prepared[i]

		existing, err := w.store.FindByKey(ctx, candidate.Key())
		if err != nil && !errors.Is(err, ErrNotFound) {
			return result, fmt.Errorf("failed to look up %s %s: %w", candidate.CompanyCode, candidate.Title, err)
		}

		action, err := Resolve(mode, existing != nil)
		if err != nil {
			return result, err
		}

		switch action {
		case ActionInsert:
			if err := w.store.Create(ctx, &candidate); err != nil {
				return result, fmt.Errorf("failed to insert %s %s: %w", candidate.CompanyCode, candidate.Title, err)
			}
			result.Inserted++
			result.New = append(result.New, candidate)
		case ActionUpdate:
			candidate.ID = existing.ID
			candidate.CreatedAt = existing.CreatedAt
			if err := w.store.Update(ctx, &candidate); err != nil {
				return result, fmt.Errorf("failed to update %s %s: %w", candidate.CompanyCode, candidate.Title, err)
			}
			result.Updated++
		case ActionSkip:
			result.Skipped++
		}
	}

	w.logger.Info("Wrote announcement batch",
		logger.StringField("mode", string(mode)),
		logger.StringField("query_date", queryDate),
		logger.IntField("inserted", result.Inserted),
		logger.IntField("updated", result.Updated),
		logger.IntField("skipped", result.Skipped))
	return result, nil
}

// Prepare returns copies of batch ready for persistence: query_date set,
// raw markup and surrogate ids cleared.
func Prepare(queryDate string, batch []entity.Announcement) []entity.Announcement {
	out := make([]entity.Announcement, len(batch))
	for i, a := range batch {
		qd := queryDate
		a.QueryDate = &qd
		a.RawHTML = ""
		a.ID = 0
		out[i] = a
	}
	return out
}
