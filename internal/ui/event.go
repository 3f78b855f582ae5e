package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/papapumpkin/harbor/internal/telemetry"
)

// Event prints a human-readable representation of a telemetry event.
func (p *Printer) Event(evt telemetry.Event) {
	parts := []string{
		p.dim.Render("[" + evt.Timestamp.Local().Format(time.TimeOnly) + "]"),
	}
	switch evt.Kind {
	case telemetry.KindRecordRejected:
		parts = append(parts, p.bad.Render(evt.Kind))
	case telemetry.KindRecordApplied:
		parts = append(parts, p.ok.Render(evt.Kind))
	default:
		parts = append(parts, p.header.Render(evt.Kind))
	}
	if evt.RunID != "" {
		parts = append(parts, "run="+shortID(evt.RunID))
	}
	if evt.Record != 0 {
		parts = append(parts, fmt.Sprintf("record=%d", evt.Record))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}
	fmt.Fprintln(p.w, strings.Join(parts, " "))
}

// RawLine prints a line that could not be decoded as an event.
func (p *Printer) RawLine(line string) {
	fmt.Fprintf(p.w, "%s %s\n", p.bad.Render("???"), line)
}

// shortID keeps the first block of a UUID.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
