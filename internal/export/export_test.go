package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twse-announcements/internal/entity"
	"twse-announcements/pkg/calendar"
	"twse-announcements/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []entity.Announcement {
	clause := "20"
	return []entity.Announcement{
		{CompanyCode: "2330", CompanyName: "台積電", Date: "114/08/15", Time: "07:00:03", Title: "公告董事會決議\r\n股利分派", ClauseCode: &clause, RawHTML: "<tr>...</tr>"},
		{CompanyCode: "1101", CompanyName: "台泥", Date: "114/08/15", Time: "17:30:12", Title: "公告取得設備"},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "table", "html", "txt", " TXT "} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.EqualError(t, err, "unsupported output format: csv. supported: json, table, html, txt")
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "twse_announcements_20250815", BaseName("twse_announcements", calendar.Date{Calendar: calendar.Gregorian, Year: 2025, Month: 8, Day: 15}))
	assert.Equal(t, "out_20250105", BaseName("out", calendar.Date{Calendar: calendar.Local, Year: 114, Month: 1, Day: 5}))
}

func TestText(t *testing.T) {
	got := Text(sample())
	lines := strings.Split(got, "\n")

	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "台灣證交所重大訊息", lines[0])
	assert.Equal(t, "==================", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "代號       公司名稱                 日期         時間       標題", lines[3])
	assert.Equal(t, strings.Repeat("-", 80), lines[4])
	assert.Equal(t, "2330     台積電                  114/08/15  07:00:03 公告董事會決議  股利分派", lines[5])
	assert.True(t, strings.HasSuffix(got, "公告取得設備\n"))
}

func TestTextEmpty(t *testing.T) {
	assert.Equal(t, "台灣證交所重大訊息\n==================\n\n沒有找到重大訊息\n", Text(nil))
}

func TestJSONOmitsRawMarkup(t *testing.T) {
	data, err := JSON(sample())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "raw_html")
	assert.NotContains(t, string(data), "<tr>")
	assert.Contains(t, string(data), "\n  ")

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "20", decoded[0]["clause_code"])

	data, err = JSON(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestExport(t *testing.T) {
	tests := []struct {
		format    Format
		wantFiles []string
		wantOut   string
	}{
		{format: FormatJSON, wantFiles: []string{"out_20250815.html", "out_20250815.json"}, wantOut: `"company_code": "2330"`},
		{format: FormatTable, wantFiles: []string{"out_20250815.html", "out_20250815.txt"}, wantOut: "2330     台積電"},
		{format: FormatHTML, wantFiles: []string{"out_20250815.html"}, wantOut: "<html>listing</html>"},
		{format: FormatTXT, wantFiles: []string{"out_20250815.html", "out_20250815.txt"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			dir := t.TempDir()
			var out bytes.Buffer
			e := NewExporter(dir, &out, logger.NewNop())

			written, err := e.Export(tt.format, "out_20250815", "<html>listing</html>", sample())
			require.NoError(t, err)

			names := make([]string, 0, len(written))
			for _, p := range written {
				names = append(names, filepath.Base(p))
				_, err := os.Stat(p)
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantFiles, names)
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			} else {
				assert.Empty(t, out.String())
			}

			raw, err := os.ReadFile(filepath.Join(dir, "out_20250815.html"))
			require.NoError(t, err)
			assert.Equal(t, "<html>listing</html>", string(raw))
		})
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	_, err := NewExporter(dir, &bytes.Buffer{}, nil).Export(Format("csv"), "out", "<html/>", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
