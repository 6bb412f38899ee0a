package clips

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

// Scan returns the files directly inside folder whose name ends in one of
// exts. Matching is case-sensitive and subfolders are not descended into.
// The result is ordered by file name.
func Scan(folder string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %q: %w", folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if hasExtension(name, exts) {
			files = append(files, filepath.Join(folder, name))
		}
	}

	return files, nil
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Pick chooses one entry uniformly at random. Consecutive picks are
// independent, so the same file may come up twice in a row.
func Pick(rng *rand.Rand, files []string) (string, bool) {
	if len(files) == 0 {
		return "", false
	}
	return files[rng.IntN(len(files))], true
}
