package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrNoRows = errors.New("no rows to export")

// GenerateCSV renders rows with a header line first. Every cell is wrapped in
// double quotes with embedded quotes doubled, and lines are joined with "\n"
// without a trailing newline.
//
// columns fixes the header order. When it is empty the keys of the first row
// are used in sorted order; keys that only show up in later rows are appended.
func GenerateCSV(rows []map[string]any, columns []string) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoRows
	}

	headers := Headers(rows, columns)

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(headers))

	cells := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			cells[i] = formatValue(row[h])
		}
		lines = append(lines, joinCells(cells))
	}

	return strings.Join(lines, "\n"), nil
}

func Headers(rows []map[string]any, columns []string) []string {
	seen := make(map[string]bool)
	var headers []string
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			headers = append(headers, key)
		}
	}

	for _, c := range columns {
		add(c)
	}
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k)
		}
	}
	return headers
}

func joinCells(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// Filename returns "<label>.csv", or "<fallback>.csv" when label is empty.
func Filename(label, fallback string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = fallback
	}
	if strings.HasSuffix(strings.ToLower(label), ".csv") {
		return label
	}
	return label + ".csv"
}
