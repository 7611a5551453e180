package extractor

import (
	"os"
	"strings"
	"testing"

	"twse-announcements/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(b)
}

func TestExtractSingleRowWithoutHiddenFields(t *testing.T) {
	doc := `<table>
<tr><th class="tblHead">日期</th></tr>
<tr><td>2025-08-15</td><td>07:00:03</td><td>2330</td><td>TSMC</td><td>Announce X</td></tr>
</table>`

	got, diag, err := NewWalker(logger.NewNop()).Extract(doc)
	require.NoError(t, err)
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, "2025-08-15", a.Date)
	assert.Equal(t, "07:00:03", a.Time)
	assert.Equal(t, "2330", a.CompanyCode)
	assert.Equal(t, "TSMC", a.CompanyName)
	assert.Equal(t, "Announce X", a.Title)
	assert.Nil(t, a.DetailContent)
	assert.Nil(t, a.AnnouncementType)
	assert.Nil(t, a.FactDate)
	assert.Nil(t, a.FactOccurrenceDate)
	assert.Nil(t, a.ClauseCode)
	assert.Nil(t, a.QueryDate)
	assert.True(t, strings.HasPrefix(a.RawHTML, "<tr>"))
	assert.True(t, diag.TableFound)
	assert.Equal(t, 1, diag.DataRows)
}

func TestExtractFixture(t *testing.T) {
	got, diag, err := NewWalker(nil).Extract(loadFixture(t, "t05st02.html"))
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "2330", first.CompanyCode)
	assert.Equal(t, "本公司代子公司公告取得 使用權資產", first.Title)
	require.NotNil(t, first.ClauseCode)
	assert.Equal(t, "20", *first.ClauseCode)
	require.NotNil(t, first.FactOccurrenceDate)
	assert.Equal(t, "2025-08-14", *first.FactOccurrenceDate)
	require.NotNil(t, first.FactDate)
	assert.Equal(t, "114/8/14", *first.FactDate)
	require.NotNil(t, first.AnnouncementType)
	assert.Equal(t, "符合條款第四條第20款：20", *first.AnnouncementType)
	require.NotNil(t, first.DetailContent)
	assert.True(t, strings.HasPrefix(*first.DetailContent, "1.標的物之名稱及性質"))
	assert.Contains(t, first.RawHTML, `name="h08"`)

	second := got[1]
	assert.Equal(t, "1101", second.CompanyCode)
	require.NotNil(t, second.ClauseCode)
	assert.Equal(t, "14", *second.ClauseCode)
	require.NotNil(t, second.FactOccurrenceDate)
	assert.Equal(t, "114/08/15", *second.FactOccurrenceDate, "non 8-digit values pass through")
	assert.Nil(t, second.DetailContent)

	assert.Equal(t, 2, diag.TablesScanned, "scanning stops at the first qualifying table")
	assert.Equal(t, 3, diag.DataRows)
	assert.Equal(t, 1, diag.DroppedRows)

	for _, a := range got {
		assert.NotEqual(t, "9999", a.CompanyCode)
		assert.NotEqual(t, "2317", a.CompanyCode, "rows with four cells are not data rows")
	}
}

func TestExtractDropsFourCellRow(t *testing.T) {
	doc := `<table><tr><th class="tblHead">x</th></tr>
<tr><td>2025-08-15</td><td>07:00:03</td><td>2330</td><td>TSMC</td></tr></table>`
	got, diag, err := NewWalker(nil).Extract(doc)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, diag.DataRows)
}

func TestExtractSkipsRowWithEmptyFirstCell(t *testing.T) {
	doc := `<table><tr><th class="tblHead">x</th></tr>
<tr><td> </td><td>07:00:03</td><td>2330</td><td>TSMC</td><td>Title</td></tr></table>`
	got, _, err := NewWalker(nil).Extract(doc)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractIgnoresTablesWithoutHeaderMarker(t *testing.T) {
	doc := `<table><tr><th>日期</th></tr>
<tr><td>2025-08-15</td><td>07:00:03</td><td>2330</td><td>TSMC</td><td>Title</td></tr></table>`
	got, diag, err := NewWalker(nil).Extract(doc)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, diag.TableFound)
	assert.Equal(t, 1, diag.TablesScanned)
}

func TestExtractNoDataDocument(t *testing.T) {
	doc := `<html><body><center><h3>查無所需資料！沒有找到重大訊息</h3></center></body></html>`
	got, diag, err := NewWalker(nil).Extract(doc)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, diag.TableFound)
	assert.True(t, HasNoDataMarker(doc))
}

func TestHasNoDataMarker(t *testing.T) {
	assert.True(t, HasNoDataMarker("今日無重大訊息"))
	assert.True(t, HasNoDataMarker("沒有找到"))
	assert.True(t, HasNoDataMarker("<p>No Data</p>"))
	assert.False(t, HasNoDataMarker("<table></table>"))
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "a b  c", CleanTitle("a\nb\r\nc"))
}
