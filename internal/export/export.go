package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"twse-announcements/internal/entity"
	"twse-announcements/pkg/calendar"
	"twse-announcements/pkg/logger"

	"github.com/tidwall/pretty"
)

// ErrUnsupportedFormat is returned for an output format outside Formats.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format selects how a scrape result is written out.
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatHTML  Format = "html"
	FormatTXT   Format = "txt"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatTable, FormatHTML, FormatTXT}

const (
	textTitle     = "台灣證交所重大訊息"
	textUnderline = "=================="
	noDataLine    = "沒有找到重大訊息"
	rowFormat     = "%-8s %-20s %-10s %-8s %s\n"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("%w: %s. supported: %s", ErrUnsupportedFormat, s, strings.Join(names, ", "))
}

// BaseName returns "<prefix>_YYYYMMDD" for the query date.
func BaseName(prefix string, d calendar.Date) string {
	g := d.ToGregorian()
	return fmt.Sprintf("%s_%04d%02d%02d", prefix, g.Year, g.Month, g.Day)
}

// WriteTable writes the aligned announcement table, or the no-data line when
// there is nothing to show.
func WriteTable(w io.Writer, announcements []entity.Announcement) error {
	if len(announcements) == 0 {
		_, err := fmt.Fprintln(w, noDataLine)
		return err
	}
	if _, err := fmt.Fprintf(w, rowFormat, "代號", "公司名稱", "日期", "時間", "標題"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 80)); err != nil {
		return err
	}
	for i := range announcements {
		a := &announcements[i]
		title := strings.NewReplacer("\n", " ", "\r", " ").Replace(a.Title)
		if _, err := fmt.Fprintf(w, rowFormat, a.CompanyCode, a.CompanyName, a.Date, a.Time, title); err != nil {
			return err
		}
	}
	return nil
}

// Text renders the text export: a header block followed by the table.
func Text(announcements []entity.Announcement) string {
	var b strings.Builder
	b.WriteString(textTitle + "\n")
	b.WriteString(textUnderline + "\n\n")
	_ = WriteTable(&b, announcements)
	return b.String()
}

// JSON renders announcements as indented JSON. Source markup is never
// included.
func JSON(announcements []entity.Announcement) ([]byte, error) {
	if announcements == nil {
		announcements = []entity.Announcement{}
	}
	raw, err := json.Marshal(announcements)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal announcements: %w", err)
	}
	return pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "}), nil
}

// Exporter writes scrape results to files and to a console writer.
type Exporter struct {
	dir    string
	out    io.Writer
	logger *logger.Logger
}

// NewExporter creates an Exporter writing files under dir and console
// output to out.
func NewExporter(dir string, out io.Writer, log *logger.Logger) *Exporter {
	if dir == "" {
		dir = "."
	}
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Exporter{dir: dir, out: out, logger: log}
}

// SaveHTML stores the raw source document as <base>.html.
func (e *Exporter) SaveHTML(base, document string) (string, error) {
	return e.save(base+".html", []byte(document))
}

// SaveJSON stores announcements as <base>.json.
func (e *Exporter) SaveJSON(base string, announcements []entity.Announcement) (string, error) {
	data, err := JSON(announcements)
	if err != nil {
		return "", err
	}
	return e.save(base+".json", data)
}

// SaveText stores the text export as <base>.txt.
func (e *Exporter) SaveText(base string, announcements []entity.Announcement) (string, error) {
	return e.save(base+".txt", []byte(Text(announcements)))
}

// Export writes a scrape result in the given format. The raw document is
// always saved; the format decides what else is printed and stored.
func (e *Exporter) Export(format Format, base, document string, announcements []entity.Announcement) ([]string, error) {
	switch format {
	case FormatJSON, FormatTable, FormatHTML, FormatTXT:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	htmlPath, err := e.SaveHTML(base, document)
	if err != nil {
		return nil, err
	}
	written := []string{htmlPath}

	var path string
	switch format {
	case FormatJSON:
		data, err := JSON(announcements)
		if err != nil {
			return written, err
		}
		if _, err := e.out.Write(data); err != nil {
			return written, err
		}
		path, err = e.SaveJSON(base, announcements)
		if err != nil {
			return written, err
		}
	case FormatTable:
		if err := WriteTable(e.out, announcements); err != nil {
			return written, err
		}
		path, err = e.SaveText(base, announcements)
		if err != nil {
			return written, err
		}
	case FormatHTML:
		if _, err := io.WriteString(e.out, document); err != nil {
			return written, err
		}
	case FormatTXT:
		path, err = e.SaveText(base, announcements)
		if err != nil {
			return written, err
		}
	}
	if path != "" {
		written = append(written, path)
	}
	return written, nil
}

func (e *Exporter) save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.logger.Info("Export written", logger.StringField("path", path), logger.IntField("bytes", len(data)))
	return path, nil
}
