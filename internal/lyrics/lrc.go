package lyrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type TimedLine struct {
	OffsetMs int64
	Text     string
}

// Parse turns timestamp-tagged LRC text into a timeline sorted by offset.
// It never fails: unusable tags are skipped, and untagged text that does not
// look like LRC at all is spread one line per second.
func Parse(raw string) []TimedLine {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	rows := splitRows(raw)
	result := make([]TimedLine, 0, len(rows))

	for _, row := range rows {
		offsets, text := scanTags(row)
		if len(offsets) == 0 || text == "" {
			continue
		}
		for _, offset := range offsets {
			result = append(result, TimedLine{OffsetMs: offset, Text: text})
		}
	}

	if len(result) == 0 {
		if strings.HasPrefix(strings.TrimLeft(raw, " \t\r\n"), "[") {
			return nil
		}
		return plainTimeline(rows)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OffsetMs < result[j].OffsetMs
	})

	return result
}

// ActiveIndex returns the largest index whose offset does not exceed the
// position, or -1 when the position precedes the first line.
func ActiveIndex(lines []TimedLine, positionMs int64) int {
	return sort.Search(len(lines), func(i int) bool {
		return lines[i].OffsetMs > positionMs
	}) - 1
}

func FormatTimestamp(offsetMs int64) string {
	if offsetMs < 0 {
		offsetMs = 0
	}
	minutes := offsetMs / 60000
	seconds := (offsetMs % 60000) / 1000
	centis := (offsetMs % 1000) / 10
	return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, centis)
}

func splitRows(raw string) []string {
	rows := strings.Split(raw, "\n")
	for i, row := range rows {
		rows[i] = strings.TrimSuffix(row, "\r")
	}
	return rows
}

func plainTimeline(rows []string) []TimedLine {
	result := make([]TimedLine, 0, len(rows))
	for i, row := range rows {
		text := strings.TrimSpace(row)
		if text == "" {
			continue
		}
		result = append(result, TimedLine{OffsetMs: int64(i) * 1000, Text: text})
	}
	return result
}

// scanTags consumes the run of leading [..] tags on a row. Every tag that
// parses as a timestamp contributes an offset; the rest of the row is the
// shared text.
func scanTags(row string) ([]int64, string) {
	rest := strings.TrimSpace(row)
	var offsets []int64

	for strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			break
		}

		if offset, ok := parseTag(rest[1:end]); ok {
			offsets = append(offsets, offset)
		}
		rest = strings.TrimLeft(rest[end+1:], " \t")
	}

	return offsets, strings.TrimSpace(rest)
}

// parseTag accepts MM:SS, MM:SS.ff, MM:SS.fff, MM:SS:ff and MM:SS:fff.
func parseTag(tag string) (int64, bool) {
	parts := strings.Split(tag, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	minutesPart := parts[0]
	secondsPart := parts[1]
	fracPart := ""

	if len(parts) == 3 {
		fracPart = parts[2]
	} else if dot := strings.IndexByte(secondsPart, '.'); dot >= 0 {
		fracPart = secondsPart[dot+1:]
		secondsPart = secondsPart[:dot]
		if fracPart == "" {
			return 0, false
		}
	}

	minutes, ok := parseDigits(minutesPart)
	if !ok {
		return 0, false
	}
	if len(secondsPart) != 2 {
		return 0, false
	}
	seconds, ok := parseDigits(secondsPart)
	if !ok {
		return 0, false
	}

	var millis int64
	switch len(fracPart) {
	case 0:
	case 2:
		value, ok := parseDigits(fracPart)
		if !ok {
			return 0, false
		}
		millis = value * 10
	case 3:
		value, ok := parseDigits(fracPart)
		if !ok {
			return 0, false
		}
		millis = value
	default:
		return 0, false
	}

	return minutes*60000 + seconds*1000 + millis, true
}

func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	value, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
