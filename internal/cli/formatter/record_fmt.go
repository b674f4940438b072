package formatter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/prdsmith/internal/domain"
)

// FormatRecord renders one record with its payload keys in sorted order.
func FormatRecord(r *domain.Record, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Bold(r.ID), KindBadge(r.Kind))
	fmt.Fprintf(&b, "%s %s\n", Dim("parent: "), r.ParentID)
	fmt.Fprintf(&b, "%s %s\n", Dim("created:"), HumanTimestamp(r.CreatedAt, now))
	fmt.Fprintf(&b, "%s %s\n\n", Dim("updated:"), HumanTimestamp(r.UpdatedAt, now))
	b.WriteString(FormatPayload(r.Payload))
	return b.String()
}

// FormatPayload renders key: value lines. Non-string values are shown as
// compact JSON.
func FormatPayload(p domain.Payload) string {
	if len(p) == 0 {
		return Dim("(empty payload)") + "\n"
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s %s\n", StyleBlue.Render(k+":"), payloadValue(p[k]))
	}
	return b.String()
}

func payloadValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// FormatRecordList renders records as a table in the order given.
func FormatRecordList(records []*domain.Record, now time.Time) string {
	if len(records) == 0 {
		return Dim("No records.") + "\n"
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			TruncID(r.ID),
			KindBadge(r.Kind),
			recordLabel(r),
			Dim(HumanTimestamp(r.UpdatedAt, now)),
		})
	}
	return RenderTable([]string{"ID", "KIND", "NAME", "UPDATED"}, rows)
}

// recordLabel picks the first human-readable field a payload carries.
func recordLabel(r *domain.Record) string {
	for _, key := range []string{"name", "title"} {
		if s := r.Payload.String(key); s != "" {
			return s
		}
	}
	return Dim("--")
}
