package diff

import (
	"sort"
	"strconv"
	"strings"
)

// LineRange is an inclusive span of line numbers in the new version of a
// file.
type LineRange struct {
	Start int
	End   int
}

// ChangedRanges extracts the added/modified line ranges in the new file from
// unified-diff patch text. Each hunk header resets the running line counter
// to the new-file start; added lines record a range and advance the counter,
// deleted lines do not advance it, and everything else counts as context.
// Adjacent and overlapping ranges are merged.
func ChangedRanges(patch string) []LineRange {
	var ranges []LineRange
	currentLine := 0

	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			if start, ok := parseHunkNewStart(line); ok {
				currentLine = start
			}
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			ranges = append(ranges, LineRange{Start: currentLine, End: currentLine})
			currentLine++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			// Deleted content has no position in the new file.
		default:
			currentLine++
		}
	}

	return mergeRanges(ranges)
}

// parseHunkNewStart extracts the new-file start line from a hunk header like
// "@@ -10,7 +10,8 @@ optional context".
func parseHunkNewStart(line string) (int, bool) {
	parts := strings.SplitN(line, "+", 2)
	if len(parts) < 2 {
		return 0, false
	}
	rangePart := strings.TrimSpace(strings.SplitN(parts[1], "@@", 2)[0])
	if idx := strings.Index(rangePart, ","); idx >= 0 {
		rangePart = rangePart[:idx]
	}
	start, err := strconv.Atoi(rangePart)
	if err != nil {
		return 0, false
	}
	return start, true
}

// mergeRanges merges adjacent or overlapping ranges into the widest span,
// sorted by start.
func mergeRanges(ranges []LineRange) []LineRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]LineRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []LineRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
