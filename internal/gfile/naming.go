package gfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// galfit numbers its result files galfit.01, galfit.02, ...

var resultName = regexp.MustCompile(`^galfit\.(\d+)$`)

// NameFromIndex returns the result file name for index n.
func NameFromIndex(n int) string {
	return fmt.Sprintf("galfit.%02d", n)
}

// IndexFromName extracts the result index from a file name or path like
// galfit.05.
func IndexFromName(name string) (int, bool) {
	m := resultName.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// LatestIndex returns the highest result index present in dir; ok is false
// when dir holds no result files.
func LatestIndex(dir string) (int, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, false, fmt.Errorf("scanning result files: %w", err)
	}

	latest, found := 0, false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n, ok := IndexFromName(e.Name())
		if !ok {
			continue
		}
		if !found || n > latest {
			latest, found = n, true
		}
	}
	return latest, found, nil
}

// NextIndex returns the index the next galfit run in dir would write.
func NextIndex(dir string) (int, error) {
	latest, found, err := LatestIndex(dir)
	if err != nil {
		return 0, err
	}
	if !found {
		return 1, nil
	}
	return latest + 1, nil
}
