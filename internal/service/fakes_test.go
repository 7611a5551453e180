package service

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"twse-announcements/internal/dedup"
	"twse-announcements/internal/entity"
	"twse-announcements/internal/query"
	"twse-announcements/internal/repository"

	"github.com/stretchr/testify/require"
)

func loadListing(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("../extractor/testdata/t05st02.html")
	require.NoError(t, err)
	return string(b)
}

func strPtr(s string) *string { return &s }

type fakeFetcher struct {
	docs  map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, date string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.docs[date], nil
}

type memAnnouncementRepo struct {
	mu      sync.Mutex
	nextID  uint
	records []entity.Announcement
}

func (m *memAnnouncementRepo) FindByKey(_ context.Context, key entity.AnnouncementKey) (*entity.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].Key() == key {
			found := m.records[i]
			return &found, nil
		}
	}
	return nil, dedup.ErrNotFound
}

func (m *memAnnouncementRepo) Create(_ context.Context, a *entity.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Date(2025, 8, 15, 18, 0, int(m.nextID), 0, time.UTC)
	}
	m.records = append(m.records, *a)
	return nil
}

func (m *memAnnouncementRepo) Update(_ context.Context, a *entity.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == a.ID {
			m.records[i] = *a
			return nil
		}
	}
	return dedup.ErrNotFound
}

func (m *memAnnouncementRepo) ReplaceByQueryDate(ctx context.Context, queryDate string, batch []entity.Announcement) (int64, error) {
	m.mu.Lock()
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
	m.mu.Unlock()

	for i := range batch {
		if err := m.Create(ctx, &batch[i]); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

func (m *memAnnouncementRepo) Find(_ context.Context, f query.Filter) ([]entity.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Announcement
	for i := range m.records {
		if f.Match(&m.records[i]) {
			out = append(out, m.records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return query.Less(&out[i], &out[j]) })
	if limit := query.ClampLimit(f.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAnnouncementRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *memAnnouncementRepo) TopCompanies(_ context.Context, n int) ([]repository.CompanyCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]*repository.CompanyCount{}
	for _, r := range m.records {
		c, ok := counts[r.CompanyCode]
		if !ok {
			c = &repository.CompanyCount{CompanyCode: r.CompanyCode, CompanyName: r.CompanyName}
			counts[r.CompanyCode] = c
		}
		c.Count++
	}
	out := make([]repository.CompanyCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CompanyCode < out[j].CompanyCode
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *memAnnouncementRepo) Sample(_ context.Context, n int) ([]entity.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) < n {
		n = len(m.records)
	}
	out := make([]entity.Announcement, n)
	copy(out, m.records[:n])
	return out, nil
}

type memClauseCodeRepo struct {
	codes   []entity.ClauseCode
	countFn func() (int64, error)
}

func (m *memClauseCodeRepo) Count(_ context.Context) (int64, error) {
	if m.countFn != nil {
		return m.countFn()
	}
	return int64(len(m.codes)), nil
}

func (m *memClauseCodeRepo) CreateBatch(_ context.Context, codes []entity.ClauseCode) error {
	m.codes = append(m.codes, codes...)
	return nil
}

func (m *memClauseCodeRepo) FindAll(_ context.Context) ([]entity.ClauseCode, error) {
	out := make([]entity.ClauseCode, len(m.codes))
	copy(out, m.codes)
	return out, nil
}

func (m *memClauseCodeRepo) DeleteAll(_ context.Context) error {
	m.codes = nil
	return nil
}

type memScrapeRunRepo struct {
	mu   sync.Mutex
	runs map[string]entity.ScrapeRun
	err  error
}

func newMemScrapeRunRepo() *memScrapeRunRepo {
	return &memScrapeRunRepo{runs: map[string]entity.ScrapeRun{}}
}

func (m *memScrapeRunRepo) Create(_ context.Context, run *entity.ScrapeRun) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = *run
	return nil
}

func (m *memScrapeRunRepo) Update(_ context.Context, run *entity.ScrapeRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return errors.New("run not found")
	}
	m.runs[run.ID] = *run
	return nil
}

func (m *memScrapeRunRepo) FindRecent(_ context.Context, limit int) ([]entity.ScrapeRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.ScrapeRun, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (r *recordingNotifier) SendMessage(text string) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, text)
	return nil
}
