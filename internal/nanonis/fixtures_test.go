// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nanonis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- synthetic file builders ---

// writeSXM builds a minimal .sxm file: 4x3 pixels, a Z channel recorded in
// both directions and, when withDemod is set, a forward-only lock-in
// channel. Forward Z values count up from 0 in row-major order.
func writeSXM(t *testing.T, dir, name string, withDemod bool) string {
	t.Helper()

	const px, py = 4, 3

	var header strings.Builder
	header.WriteString(":NANONIS_VERSION:\n2\n")
	header.WriteString(":SCAN_PIXELS:\n  4  3\n")
	header.WriteString(":SCAN_RANGE:\n  4.000000E-9  3.000000E-9\n")
	header.WriteString(":SCAN_ANGLE:\n  9.0E+0\n")
	header.WriteString(":SCAN_DIR:\ndown\n")
	header.WriteString(":BIAS:\n  5.000E-1\n")
	header.WriteString(":REC_DATE:\n 20.03.2024\n")
	header.WriteString(":REC_TIME:\n15:42:10\n")
	header.WriteString(":Z-CONTROLLER:\n")
	header.WriteString("\tName\ton\tSetpoint\tP-gain\n")
	header.WriteString("\tZ-Ctrl\t1\t1.000E-10 A\t5.000E-12\n")
	header.WriteString(":DATA_INFO:\n")
	header.WriteString("\tChannel\tName\tUnit\tDirection\tCalibration\tOffset\n")
	header.WriteString("\t14\tZ\tm\tboth\t1.0E+0\t0.0E+0\n")
	if withDemod {
		header.WriteString("\t2\tLI_Demod_1_X\tA\tfwd\t1.0E+0\t0.0E+0\n")
	}
	header.WriteString("\n:SCANIT_END:\n\n")

	var buf bytes.Buffer
	buf.WriteString(header.String())
	buf.Write([]byte{0x1a, 0x04})

	writeFrame := func(offset float64) {
		for i := 0; i < px*py; i++ {
			binary.Write(&buf, binary.BigEndian, float32(offset+float64(i)))
		}
	}
	writeFrame(0)   // Z forward
	writeFrame(100) // Z backward
	if withDemod {
		writeFrame(200) // demod forward
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeDAT builds a minimal .dat file; zSweep selects the Z-spectroscopy
// column set and header keys.
func writeDAT(t *testing.T, dir, name string, zSweep bool) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("Experiment\tbias spectroscopy\t\n")
	b.WriteString("Saved Date\t05.03.2024 14:30:00\t\n")
	b.WriteString("Bias>Bias (V)\t500E-3\t\n")
	b.WriteString("Z-Controller>Setpoint\t100E-12\t\n")
	b.WriteString("Comment01\ttest sample\t\n")
	if zSweep {
		b.WriteString("Z Spectroscopy>Initial Z-offset (m)\t-1E-10\t\n")
		b.WriteString("Z Spectroscopy>Sweep distance (m)\t5E-10\t\n")
		b.WriteString("Z Spectroscopy>Number of sweeps\t2\t\n")
		b.WriteString("[DATA]\n")
		b.WriteString("Z rel (m)\tCurrent (A)\n")
		for i := 0; i < 5; i++ {
			z := float64(i) * 1e-10
			cur := 1e-10 * math.Exp(-float64(i))
			fmt.Fprintf(&b, "%g\t%g\n", z, cur)
		}
	} else {
		b.WriteString("Bias Spectroscopy>Sweep Start (V)\t-1E+0\t\n")
		b.WriteString("Bias Spectroscopy>Sweep End (V)\t1E+0\t\n")
		b.WriteString("Bias Spectroscopy>Number of sweeps\t3\t\n")
		b.WriteString("[DATA]\n")
		b.WriteString("Bias calc (V)\tCurrent (A)\tLI Demod 1 X (A)\n")
		for i := 0; i < 5; i++ {
			v := -1.0 + float64(i)*0.5
			fmt.Fprintf(&b, "%g\t%g\t%g\n", v, v*1e-10, math.Abs(v)*1e-12)
		}
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// write3DS builds a minimal .3ds file: a 2x2 grid, 3 points per sweep, one
// current channel, two fixed parameters per point. When points < 4 the
// binary block is truncated as an interrupted grid would be.
func write3DS(t *testing.T, dir, name string, points int) string {
	t.Helper()

	var b bytes.Buffer
	b.WriteString("Grid dim=\"2 x 2\"\r\n")
	b.WriteString("Grid settings=0;0;2E-8;2E-8;0\r\n")
	b.WriteString("Sweep Signal=\"Bias (V)\"\r\n")
	b.WriteString("Fixed parameters=\"Sweep Start;Sweep End\"\r\n")
	b.WriteString("Experiment parameters=\"\"\r\n")
	b.WriteString("Points=3\r\n")
	b.WriteString("Channels=\"Current (A)\"\r\n")
	b.WriteString("Start time=\"21.03.2024 09:00:00\"\r\n")
	b.WriteString(":HEADER_END:\r\n")

	for p := 0; p < points; p++ {
		binary.Write(&b, binary.BigEndian, float32(-1)) // Sweep Start
		binary.Write(&b, binary.BigEndian, float32(1))  // Sweep End
		for i := 0; i < 3; i++ {
			binary.Write(&b, binary.BigEndian, float32(p*10+i))
		}
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
