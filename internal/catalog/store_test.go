// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBiasSpectrum(t *testing.T, dir, name string) {
	t.Helper()

	var b strings.Builder
	b.WriteString("Experiment\tbias spectroscopy\t\n")
	b.WriteString("Saved Date\t05.03.2024 14:30:00\t\n")
	b.WriteString("Bias>Bias (V)\t500E-3\t\n")
	b.WriteString("Z-Controller>Setpoint\t100E-12\t\n")
	b.WriteString("Comment01\tterrace edge\t\n")
	b.WriteString("Bias Spectroscopy>Sweep Start (V)\t-1E+0\t\n")
	b.WriteString("Bias Spectroscopy>Sweep End (V)\t1E+0\t\n")
	b.WriteString("Bias Spectroscopy>Number of sweeps\t3\t\n")
	b.WriteString("[DATA]\n")
	b.WriteString("Bias calc (V)\tCurrent (A)\n")
	for i := 0; i < 5; i++ {
		v := -1.0 + float64(i)*0.5
		fmt.Fprintf(&b, "%g\t%g\n", v, v*1e-10)
	}

	if err := os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileIndex(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"Au111_0016.sxm", 16},
		{"Cu_sample_0203.dat", 203},
		{"grid_0001.3ds", 1},
		{"notes.txt", -1},
		{"Au111_16.sxm", -1},
	}
	for _, tt := range tests {
		if got := fileIndex(tt.name); got != tt.want {
			t.Errorf("fileIndex(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestScanAndList(t *testing.T) {
	dir := t.TempDir()
	writeBiasSpectrum(t, dir, "Cu_0002.dat")
	writeBiasSpectrum(t, dir, "Cu_0001.dat")

	// Supported extension with unparseable content counts as a failure.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken_0003.sxm"), []byte("not a scan"), 0o644))
	// Unrelated files are ignored outright.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("lab notes"), 0o644))

	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	var log bytes.Buffer
	sum, err := store.Scan(context.Background(), dir, &log)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Indexed)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, log.String(), "warning:")

	entries, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Ordered by file index, not directory order.
	assert.Equal(t, "Cu_0001.dat", entries[0].Name)
	assert.Equal(t, 1, entries[0].Index)
	assert.Equal(t, "Cu_0002.dat", entries[1].Name)

	assert.Equal(t, "dat", entries[0].Format)
	assert.InDelta(t, 0.5, entries[0].Bias, 1e-12)
	assert.InDelta(t, 100e-12, entries[0].Setpoint, 1e-18)
	assert.Equal(t, "2024.03.05_14:30:00", entries[0].Recorded)
	assert.Equal(t, "terrace edge", entries[0].Comment)
	assert.False(t, entries[0].IngestedAt.IsZero())
}

func TestListFormatFilter(t *testing.T) {
	dir := t.TempDir()
	writeBiasSpectrum(t, dir, "Cu_0001.dat")

	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	var log bytes.Buffer
	_, err = store.Scan(context.Background(), dir, &log)
	require.NoError(t, err)

	entries, err := store.List(context.Background(), "dat")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = store.List(context.Background(), "sxm")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQueryFilters(t *testing.T) {
	dir := t.TempDir()
	writeBiasSpectrum(t, dir, "Au111_0003.dat")
	writeBiasSpectrum(t, dir, "Au111_0007.dat")
	writeBiasSpectrum(t, dir, "SiC_0005.dat")

	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	var log bytes.Buffer
	_, err = store.Scan(context.Background(), dir, &log)
	require.NoError(t, err)

	entries, err := store.Query(context.Background(), Filter{Name: "Au111"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Au111_0003.dat", entries[0].Name)

	entries, err = store.Query(context.Background(), Filter{FromIndex: 4, ToIndex: 6})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SiC_0005.dat", entries[0].Name)

	entries, err = store.Query(context.Background(), Filter{Name: "Au111", FromIndex: 5})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Index)
}

func TestRescanIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeBiasSpectrum(t, dir, "Cu_0001.dat")

	store, err := NewStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	var log bytes.Buffer
	for i := 0; i < 2; i++ {
		sum, err := store.Scan(context.Background(), dir, &log)
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Indexed)
	}

	entries, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "re-scanning must update rows in place")
}
