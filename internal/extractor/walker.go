// Package extractor turns the exchange's announcement listing document into
// Announcement records.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"twse-announcements/internal/entity"
	"twse-announcements/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnreadableDocument is returned when the document cannot be parsed at all.
var ErrUnreadableDocument = errors.New("unreadable document")

const (
	headerMarkerSelector = "th.tblHead"
	hiddenInputSelector  = "input[type='hidden']"
	minDataCells         = 5
)

// Diagnostic summarizes what the walker saw. It never carries errors for
// individual rows.
type Diagnostic struct {
	TablesScanned int          `json:"tables_scanned"`
	TableFound    bool         `json:"table_found"`
	RowsScanned   int          `json:"rows_scanned"`
	DataRows      int          `json:"data_rows"`
	DroppedRows   int          `json:"dropped_rows"`
	FieldIssues   []FieldIssue `json:"field_issues,omitempty"`
}

// Walker extracts announcements from a listing document.
type Walker struct {
	logger *logger.Logger
}

// NewWalker creates a Walker.
func NewWalker(log *logger.Logger) *Walker {
	if log == nil {
		log = logger.NewNop()
	}
	return &Walker{logger: log}
}

// Extract walks the first table carrying a header marker and returns one
// announcement per valid data row. An empty result with a nil error is a
// valid outcome; callers use HasNoDataMarker to tell a quiet day apart from
// an unrecognized document.
func (w *Walker) Extract(document string) ([]entity.Announcement, Diagnostic, error) {
	var diag Diagnostic

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, diag, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var announcements []entity.Announcement
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		diag.TablesScanned++
		if table.Find(headerMarkerSelector).Length() == 0 {
			return true
		}
		diag.TableFound = true

		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			diag.RowsScanned++
			row := readRow(tr)
			if !isDataRow(row) {
				return
			}
			diag.DataRows++

			a, issues, ok := w.buildAnnouncement(row)
			diag.FieldIssues = append(diag.FieldIssues, issues...)
			if !ok {
				diag.DroppedRows++
				return
			}
			announcements = append(announcements, a)
		})
		return false
	})

	w.logger.Debug("Walked announcement document",
		logger.IntField("tables_scanned", diag.TablesScanned),
		logger.Field("table_found", diag.TableFound),
		logger.IntField("data_rows", diag.DataRows),
		logger.IntField("dropped_rows", diag.DroppedRows),
		logger.IntField("announcements", len(announcements)))

	return announcements, diag, nil
}

func readRow(tr *goquery.Selection) RawRow {
	var row RawRow
	tr.Find("td").Each(func(_ int, td *goquery.Selection) {
		row.Cells = append(row.Cells, strings.TrimSpace(td.Text()))
	})
	tr.Find(hiddenInputSelector).Each(func(_ int, input *goquery.Selection) {
		name, hasName := input.Attr("name")
		value, hasValue := input.Attr("value")
		if !hasName || !hasValue {
			return
		}
		row.Hidden = append(row.Hidden, HiddenField{Name: name, Value: value})
	})
	if markup, err := goquery.OuterHtml(tr); err == nil {
		row.Markup = markup
	}
	return row
}

func isDataRow(row RawRow) bool {
	return len(row.Cells) >= minDataCells && row.Cells[0] != ""
}

// buildAnnouncement maps the positional cells and the hidden metadata onto an
// announcement. It reports false when a required field is empty.
func (w *Walker) buildAnnouncement(row RawRow) (entity.Announcement, []FieldIssue, bool) {
	decoded, issues := DecodeRow(row)
	for _, issue := range issues {
		if issue.Reason == "unclassified" {
			w.logger.Debug("Ignoring unclassified hidden field",
				logger.StringField("name", issue.Name),
				logger.StringField("value", issue.Value))
			continue
		}
		w.logger.Warn("Hidden field could not be decoded cleanly",
			logger.StringField("name", issue.Name),
			logger.StringField("reason", issue.Reason))
	}

	a := entity.Announcement{
		Date:               row.Cells[0],
		Time:               row.Cells[1],
		CompanyCode:        row.Cells[2],
		CompanyName:        row.Cells[3],
		Title:              row.Cells[4],
		DetailContent:      decoded.DetailContent,
		AnnouncementType:   decoded.AnnouncementType,
		FactDate:           decoded.FactDate,
		ClauseCode:         decoded.ClauseCode,
		FactOccurrenceDate: decoded.FactOccurrenceDate,
		RawHTML:            decoded.RawMarkup,
	}

	if a.Date == "" || a.CompanyCode == "" || a.Title == "" {
		w.logger.Info("Dropping row with missing required fields",
			logger.StringField("date", a.Date),
			logger.StringField("company_code", a.CompanyCode),
			logger.StringField("title", a.Title))
		return entity.Announcement{}, issues, false
	}

	a.Title = CleanTitle(a.Title)
	return a, issues, true
}

var lineBreaks = strings.NewReplacer("\n", " ", "\r", " ")

// CleanTitle replaces embedded line breaks with spaces.
func CleanTitle(title string) string {
	return lineBreaks.Replace(title)
}
