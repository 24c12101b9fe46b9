// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nanonis

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
)

// Resolve locates the single file under baseDir whose name embeds the
// zero-padded 4-digit index (Au111_0016.sxm carries index 16) and, when
// keyword is non-empty, contains the keyword before the index. Zero matches
// return ErrNoFile. Multiple matches pick the lexicographically first and
// list every candidate on w.
func Resolve(baseDir string, number int, keyword string, w io.Writer) (string, error) {
	numberStr := fmt.Sprintf("%04d", number)

	var pattern string
	if keyword != "" {
		pattern = filepath.Join(baseDir, fmt.Sprintf("*%s*_%s.*", keyword, numberStr))
	} else {
		pattern = filepath.Join(baseDir, fmt.Sprintf("*_%s.*", numberStr))
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("globbing %q: %w", pattern, err)
	}

	if len(matches) == 0 {
		if keyword != "" {
			return "", fmt.Errorf("%w with number %s and keyword %q", ErrNoFile, numberStr, keyword)
		}
		return "", fmt.Errorf("%w with number %s", ErrNoFile, numberStr)
	}

	// Glob order is not guaranteed; pin "first" to lexicographic.
	sort.Strings(matches)

	if len(matches) > 1 && w != nil {
		fmt.Fprintf(w, "  warning: multiple files match number %s:\n", numberStr)
		for _, m := range matches {
			fmt.Fprintf(w, "  - %s\n", filepath.Base(m))
		}
		fmt.Fprintf(w, "  using the first one: %s\n", filepath.Base(matches[0]))
	}

	return matches[0], nil
}
