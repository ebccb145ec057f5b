package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

const exportTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ExportDocument is the downloadable snapshot of the dashboard.
type ExportDocument struct {
	Timestamp      string     `json:"timestamp"`
	StockData      *StockData `json:"stock_data"`
	CurrentSection Section    `json:"current_section"`
}

// Filename names the export file after the document day.
func (doc ExportDocument) Filename(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "tesla"
	}
	day := doc.Timestamp
	if len(day) >= len(time.DateOnly) {
		day = day[:len(time.DateOnly)]
	}
	return fmt.Sprintf("%s-stock-data-%s.json", strings.ToLower(prefix), day)
}

// Encode writes the document as two-space indented JSON.
func (doc ExportDocument) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: encode export: %w", err)
	}
	return nil
}

// Bytes returns the encoded document.
func (doc ExportDocument) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewExportDocument stamps stock with now in UTC.
func NewExportDocument(stock *StockData, section Section, now time.Time) ExportDocument {
	return ExportDocument{
		Timestamp:      now.UTC().Format(exportTimestampLayout),
		StockData:      stock,
		CurrentSection: section,
	}
}

// Export captures the cached stock snapshot. Without one it notifies the viewer and
// returns ErrNoExportData.
func (d *Driver) Export(ctx context.Context) (ExportDocument, error) {
	d.mu.Lock()
	stock, ok := d.state.StockData()
	if !ok {
		d.notifyLocked("warning", d.state.ActiveSection(), "No data available to export")
		event := d.eventLocked(d.state.ActiveSection(), d.state.generation, "notification")
		d.mu.Unlock()
		d.publish(ctx, event)
		return ExportDocument{}, ErrNoExportData
	}
	doc := NewExportDocument(stock, d.state.ActiveSection(), d.clock.Now())
	d.mu.Unlock()
	d.telemetry.Record(ctx, "dashboard.export", map[string]any{"section": doc.CurrentSection})
	return doc, nil
}
