package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	GroupByEquipment = "equipment"
	GroupByUser      = "user"
)

// ExportFilename names a CSV export made at now.
func ExportFilename(now time.Time) string {
	return "equipment_stats_" + now.Format("20060102") + ".csv"
}

// WriteCSV renders report grouped by equipment or by user. An unknown
// grouping still produces the period header followed by a notice row.
func WriteCSV(w io.Writer, report *Report, groupBy string) error {
	cw := csv.NewWriter(w)

	period := fmt.Sprintf("%s ~ %s", dateOrNA(report.Period.Start), dateOrNA(report.Period.End))
	rows := [][]string{
		{"Period", period},
		{"Total days", report.TotalDays.String()},
		{},
	}

	switch groupBy {
	case GroupByEquipment:
		rows = append(rows, []string{"Equipment", "Used days", "Not used days", "Details"})
		for _, name := range report.EquipmentNames() {
			u := report.EquipmentUsage[name]
			rows = append(rows, []string{name, strconv.Itoa(u.UsedDays), u.NotUsedDays.String(), breakdown(u.Users)})
		}
	case GroupByUser:
		rows = append(rows, []string{"User", "Total used days", "Details"})
		for _, name := range report.UserNames() {
			u := report.UserUsage[name]
			rows = append(rows, []string{name, strconv.Itoa(u.UsedDays), breakdown(u.Equipment)})
		}
	default:
		rows = append(rows, []string{fmt.Sprintf("Unsupported grouping %q", groupBy)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func dateOrNA(t *time.Time) string {
	if s := formatDate(t); s != nil {
		return *s
	}
	return undefinedDays
}

// breakdown renders per-name day counts as "name: N days", sorted by name.
func breakdown(days map[string]int) string {
	names := make([]string, 0, len(days))
	for name := range days {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d days", name, days[name]))
	}
	return strings.Join(parts, ", ")
}
