package lifecycle

import "strings"

type DiffType string

const (
	DiffAdded     DiffType = "ADDED"
	DiffRemoved   DiffType = "REMOVED"
	DiffUnchanged DiffType = "UNCHANGED"
)

// VersionDiff is one line of a line-oriented comparison. LineNumber is the
// source line for REMOVED and UNCHANGED entries and the target line for ADDED
// entries. SourceLine and TargetLine are 0 when the line is absent on that side.
type VersionDiff struct {
	Type       DiffType `json:"type"`
	Content    string   `json:"content"`
	LineNumber int      `json:"lineNumber"`
	SourceLine int      `json:"sourceLine,omitempty"`
	TargetLine int      `json:"targetLine,omitempty"`
}

type DiffStats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Changed reports whether the diff contains any added or removed line.
func (s DiffStats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// DiffLines aligns the lines of source and target on their longest common
// subsequence. Within a changed block removed lines come before added ones.
func DiffLines(source, target string) []VersionDiff {
	a, b := splitLines(source), splitLines(target)
	n, m := len(a), len(b)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	diffs := make([]VersionDiff, 0, max(n, m))
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			diffs = append(diffs, VersionDiff{Type: DiffUnchanged, Content: a[i], LineNumber: i + 1, SourceLine: i + 1, TargetLine: j + 1})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			diffs = append(diffs, VersionDiff{Type: DiffRemoved, Content: a[i], LineNumber: i + 1, SourceLine: i + 1})
			i++
		default:
			diffs = append(diffs, VersionDiff{Type: DiffAdded, Content: b[j], LineNumber: j + 1, TargetLine: j + 1})
			j++
		}
	}
	return diffs
}

func SummarizeDiff(diffs []VersionDiff) DiffStats {
	var stats DiffStats
	for _, d := range diffs {
		switch d.Type {
		case DiffAdded:
			stats.Added++
		case DiffRemoved:
			stats.Removed++
		default:
			stats.Unchanged++
		}
	}
	return stats
}

// Reconstruct rebuilds one side of a diff: the target side from UNCHANGED and
// ADDED lines, or the source side from UNCHANGED and REMOVED lines.
func Reconstruct(diffs []VersionDiff, targetSide bool) string {
	skip := DiffAdded
	if targetSide {
		skip = DiffRemoved
	}
	lines := make([]string, 0, len(diffs))
	for _, d := range diffs {
		if d.Type != skip {
			lines = append(lines, d.Content)
		}
	}
	return strings.Join(lines, "\n")
}
