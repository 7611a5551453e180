package service

import (
	"context"
	"strings"
	"testing"

	"twse-announcements/internal/dto"
	"twse-announcements/internal/entity"
	"twse-announcements/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededAnnouncements(t *testing.T) *memAnnouncementRepo {
	t.Helper()
	repo := &memAnnouncementRepo{}
	records := []entity.Announcement{
		{CompanyCode: "2330", CompanyName: "台積電", Date: "114/08/15", Time: "07:00:03", Title: "公告董事會決議", QueryDate: strPtr("2025-08-15")},
		{CompanyCode: "1101", CompanyName: "台泥", Date: "114/08/20", Time: "17:30:12", Title: "公告股利分派", QueryDate: strPtr("2025-08-20")},
		{CompanyCode: "2317", CompanyName: "鴻海", Date: "2025/07/01", Time: "09:10:00", Title: "補充公告" + strings.Repeat("長", 60), FactDate: strPtr("114/8/16")},
		{CompanyCode: "2330", CompanyName: "台積電", Date: "114/08/15", Time: "16:00:00", Title: "代子公司公告取得設備", QueryDate: strPtr("2025-08-15")},
	}
	for i := range records {
		require.NoError(t, repo.Create(context.Background(), &records[i]))
	}
	return repo
}

func TestListRangeIsRevalidated(t *testing.T) {
	svc := NewAnnouncementService(seededAnnouncements(t), logger.NewNop())

	res, err := svc.List(context.Background(), &dto.ListAnnouncementsRequest{StartDate: "2025-08-14", EndDate: "2025-08-16"})
	require.NoError(t, err)

	codes := make([]string, 0, len(res.Announcements))
	for _, a := range res.Announcements {
		codes = append(codes, a.CompanyCode)
	}
	assert.ElementsMatch(t, []string{"2330", "2330", "2317"}, codes)
	assert.Equal(t, 1, res.Rejected, "114/08/20 matches the year regex but not the range")
}

func TestListByCompanyAndSearch(t *testing.T) {
	svc := NewAnnouncementService(seededAnnouncements(t), logger.NewNop())
	ctx := context.Background()

	res, err := svc.List(ctx, &dto.ListAnnouncementsRequest{Company: "2330"})
	require.NoError(t, err)
	require.Len(t, res.Announcements, 2)
	assert.Equal(t, "16:00:00", res.Announcements[0].Time)

	res, err = svc.List(ctx, &dto.ListAnnouncementsRequest{Search: "股利"})
	require.NoError(t, err)
	require.Len(t, res.Announcements, 1)
	assert.Equal(t, "1101", res.Announcements[0].CompanyCode)
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc := NewAnnouncementService(&memAnnouncementRepo{}, logger.NewNop())
	res, err := svc.List(context.Background(), &dto.ListAnnouncementsRequest{Date: "2025-08-15"})
	require.NoError(t, err)
	assert.NotNil(t, res.Announcements)
	assert.Empty(t, res.Announcements)
}

func TestStats(t *testing.T) {
	svc := NewAnnouncementService(seededAnnouncements(t), logger.NewNop())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalAnnouncements)
	require.Len(t, stats.TopCompanies, 3)
	assert.Equal(t, dto.CompanyCountResponse{CompanyCode: "2330", CompanyName: "台積電", Count: 2}, stats.TopCompanies[0])
}

func TestDebug(t *testing.T) {
	svc := NewAnnouncementService(seededAnnouncements(t), logger.NewNop())

	info, err := svc.Debug(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.TotalCount)
	require.Len(t, info.DebugInfo, 4)
	assert.Equal(t, "公告董事會決議...", info.DebugInfo[0].Title)
	assert.Len(t, []rune(info.DebugInfo[2].Title), 53)

	assert.Equal(t, map[string]int{
		"query_date_YYYY-MM-DD":   3,
		"date_YYY/MM/DD_roc":      3,
		"date_YYYY/MM/DD":         1,
		"fact_date_YYY/MM/DD_roc": 1,
	}, info.DateFormatStats)
}
