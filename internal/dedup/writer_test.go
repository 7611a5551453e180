package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"twse-announcements/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	nextID  uint
	records []entity.Announcement
	failOn  string
}

func (m *memStore) FindByKey(_ context.Context, key entity.AnnouncementKey) (*entity.Announcement, error) {
	if m.failOn == "find" {
		return nil, errors.New("connection reset")
	}
	for i := range m.records {
		if m.records[i].Key() == key {
			found := m.records[i]
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) Create(_ context.Context, a *entity.Announcement) error {
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Date(2025, 8, 15, 0, 0, int(m.nextID), 0, time.UTC)
	m.records = append(m.records, *a)
	return nil
}

func (m *memStore) Update(_ context.Context, a *entity.Announcement) error {
	for i := range m.records {
		if m.records[i].ID == a.ID {
			m.records[i] = *a
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) ReplaceByQueryDate(_ context.Context, queryDate string, batch []entity.Announcement) (int64, error) {
	var kept []entity.Announcement
	var deleted int64
	for _, r := range m.records {
		if r.QueryDate != nil && *r.QueryDate == queryDate {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	for i := range batch {
		if err := m.Create(context.Background(), &batch[i]); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

func strPtr(s string) *string { return &s }

func sampleBatch() []entity.Announcement {
	return []entity.Announcement{
		{CompanyCode: "2330", CompanyName: "台積電", Date: "114/08/15", Time: "07:00:03", Title: "公告董事會決議", RawHTML: "<tr>...</tr>"},
		{CompanyCode: "1101", CompanyName: "台泥", Date: "114/08/15", Time: "17:30:12", Title: "公告股利分派", ClauseCode: strPtr("14")},
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"upsert", "replace", "skip", " UPSERT "} {
		_, err := ParseMode(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseMode("merge")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMode))
	assert.Equal(t, "unsupported duplicate mode: merge. supported: upsert, replace, skip", err.Error())
}

func TestResolve(t *testing.T) {
	tests := []struct {
		mode   Mode
		exists bool
		want   Action
	}{
		{ModeUpsert, false, ActionInsert},
		{ModeUpsert, true, ActionUpdate},
		{ModeSkip, false, ActionInsert},
		{ModeSkip, true, ActionSkip},
		{ModeReplace, true, ActionInsert},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.mode, tt.exists)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s exists=%v", tt.mode, tt.exists)
	}

	_, err := Resolve(Mode("bogus"), false)
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}

func TestWriteUpsertIsIdempotent(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, nil)
	ctx := context.Background()

	first, err := w.Write(ctx, ModeUpsert, "2025-08-15", sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)
	assert.Len(t, first.New, 2)
	snapshot := append([]entity.Announcement(nil), store.records...)

	second, err := w.Write(ctx, ModeUpsert, "2025-08-15", sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Updated)
	assert.Empty(t, second.New)

	assert.Equal(t, snapshot, store.records)
}

func TestWriteUpsertUpdatesInPlace(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, nil)
	ctx := context.Background()

	_, err := w.Write(ctx, ModeUpsert, "2025-08-15", sampleBatch())
	require.NoError(t, err)

	changed := sampleBatch()
	changed[0].DetailContent = strPtr("補充說明")
	res, err := w.Write(ctx, ModeUpsert, "2025-08-16", changed)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)

	require.Len(t, store.records, 2)
	assert.Equal(t, "補充說明", *store.records[0].DetailContent)
	assert.Equal(t, "2025-08-16", *store.records[0].QueryDate)
	assert.Equal(t, uint(1), store.records[0].ID)
}

func TestWriteSkip(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, nil)
	ctx := context.Background()

	_, err := w.Write(ctx, ModeSkip, "2025-08-15", sampleBatch()[:1])
	require.NoError(t, err)

	changed := sampleBatch()
	changed[0].DetailContent = strPtr("should not be stored")
	res, err := w.Write(ctx, ModeSkip, "2025-08-15", changed)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.Nil(t, store.records[0].DetailContent)
	assert.Len(t, store.records, 2)
}

func TestWriteReplace(t *testing.T) {
	store := &memStore{}
	w := NewWriter(store, nil)
	ctx := context.Background()

	_, err := w.Write(ctx, ModeUpsert, "2025-08-14", sampleBatch()[:1])
	require.NoError(t, err)
	_, err = w.Write(ctx, ModeUpsert, "2025-08-15", []entity.Announcement{
		{CompanyCode: "2317", Date: "114/08/15", Time: "08:00:00", Title: "舊資料"},
	})
	require.NoError(t, err)

	res, err := w.Write(ctx, ModeReplace, "2025-08-15", sampleBatch()[1:])
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Inserted)

	require.Len(t, store.records, 2)
	assert.Equal(t, "2330", store.records[0].CompanyCode, "other query dates are untouched")
	assert.Equal(t, "1101", store.records[1].CompanyCode)
}

func TestWriteRejectsUnknownMode(t *testing.T) {
	store := &memStore{}
	_, err := NewWriter(store, nil).Write(context.Background(), Mode("append"), "2025-08-15", sampleBatch())
	require.ErrorIs(t, err, ErrUnsupportedMode)
	assert.Contains(t, err.Error(), "append")
	assert.Empty(t, store.records)
}

func TestWritePropagatesStoreErrors(t *testing.T) {
	store := &memStore{failOn: "find"}
	_, err := NewWriter(store, nil).Write(context.Background(), ModeUpsert, "2025-08-15", sampleBatch())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPrepare(t *testing.T) {
	in := sampleBatch()
	in[0].ID = 9
	out := Prepare("2025-08-15", in)

	for _, a := range out {
		require.NotNil(t, a.QueryDate)
		assert.Equal(t, "2025-08-15", *a.QueryDate)
		assert.Empty(t, a.RawHTML)
		assert.Zero(t, a.ID)
	}
	assert.Equal(t, "<tr>...</tr>", in[0].RawHTML, "input is not modified")
}
