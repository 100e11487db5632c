package precompute

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadReferenceFile reads reference counts written as "order count" lines,
// the format WriteTextFile produces. Blank lines and lines starting with '#'
// are skipped.
func LoadReferenceFile(filename string) (Reference, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer f.Close()

	ref := make(Reference)
	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected \"order count\", got %q", filename, lineNo, line)
		}
		order, err := strconv.Atoi(fields[0])
		if err != nil || order < 1 {
			return nil, fmt.Errorf("%s:%d: invalid order %q", filename, lineNo, fields[0])
		}
		count, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid count %q: %w", filename, lineNo, fields[1], err)
		}
		ref[order] = count
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filename, err)
	}

	return ref, nil
}
