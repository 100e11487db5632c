package precompute

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// WriteTextFile writes one "order count" line per level, in ascending order.
// The output can be read back with LoadReferenceFile.
func WriteTextFile(stats []LevelStat, outputPath string) error {
	sorted := slices.Clone(stats)
	slices.SortFunc(sorted, func(a, b LevelStat) int { return a.Order - b.Order })

	var sb strings.Builder
	for _, s := range sorted {
		fmt.Fprintf(&sb, "%d %d\n", s.Order, s.Count)
	}

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write text file: %w", err)
	}

	return nil
}
