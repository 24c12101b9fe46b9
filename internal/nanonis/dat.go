// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nanonis

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/spm-report/pkg/types"
)

// dat layout: tab-separated "key<TAB>value" header lines terminated by a
// [DATA] line, then a tab-separated table whose first row names the signal
// columns. Everything is text; header key case is preserved
// ("Bias>Bias (V)", "Saved Date").

const datDataMarker = "[DATA]"

func parseDAT(path string) (*types.SpectrumFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	spec := &types.SpectrumFile{
		Header:  make(types.Header),
		Signals: make(map[string][]float64),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	inData := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !inData {
			if strings.TrimSpace(line) == datDataMarker {
				inData = true
				continue
			}
			key, value, found := strings.Cut(line, "\t")
			if !found || strings.TrimSpace(key) == "" {
				continue
			}
			spec.Header[strings.TrimSpace(key)] = strings.TrimSpace(strings.TrimSuffix(value, "\t"))
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if spec.Columns == nil {
			for _, f := range fields {
				name := strings.TrimSpace(f)
				if name == "" {
					continue
				}
				spec.Columns = append(spec.Columns, name)
				spec.Signals[name] = nil
			}
			continue
		}
		for i, f := range fields {
			if i >= len(spec.Columns) {
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", spec.Columns[i], err)
			}
			name := spec.Columns[i]
			spec.Signals[name] = append(spec.Signals[name], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	if !inData {
		return nil, fmt.Errorf("data marker %s not found", datDataMarker)
	}
	if len(spec.Columns) == 0 {
		return nil, fmt.Errorf("no signal columns after %s", datDataMarker)
	}
	return spec, nil
}
