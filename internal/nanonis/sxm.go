// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nanonis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pdiddy/spm-report/pkg/types"
)

// sxm layout: a colon-delimited text header (":KEY:" lines, values on the
// following lines) terminated by :SCANIT_END:, a 0x1A 0x04 marker, then one
// big-endian float32 frame per recorded channel and direction, row-major.

const sxmHeaderEnd = ":SCANIT_END:"

var sxmBinaryMarker = []byte{0x1a, 0x04}

// dataInfoRow is one row of the :DATA_INFO: channel table.
type dataInfoRow struct {
	name      string
	direction string // "both" or "fwd"
}

func parseSXM(path string) (*types.ScanFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	marker := bytes.Index(raw, sxmBinaryMarker)
	if marker < 0 {
		return nil, fmt.Errorf("binary data marker not found")
	}
	headerText := string(raw[:marker])
	if !strings.Contains(headerText, sxmHeaderEnd) {
		return nil, fmt.Errorf("header terminator %s not found", sxmHeaderEnd)
	}
	body := raw[marker+len(sxmBinaryMarker):]

	header, channels, err := parseSXMHeader(headerText)
	if err != nil {
		return nil, err
	}

	scan := &types.ScanFile{
		Header:   header,
		Channels: make(map[string]*types.ScanChannel),
	}

	pixels, err := header.Ints("scan_pixels")
	if err != nil {
		return nil, err
	}
	if len(pixels) != 2 || pixels[0] <= 0 || pixels[1] <= 0 {
		return nil, fmt.Errorf("malformed scan_pixels %v", pixels)
	}
	scan.PixelsX, scan.PixelsY = pixels[0], pixels[1]

	ranges, err := header.Floats("scan_range")
	if err != nil {
		return nil, err
	}
	if len(ranges) != 2 {
		return nil, fmt.Errorf("malformed scan_range %v", ranges)
	}
	scan.RangeX, scan.RangeY = ranges[0], ranges[1]

	scan.Direction = strings.TrimSpace(header["scan_dir"])

	if err := readSXMFrames(scan, channels, body); err != nil {
		return nil, err
	}
	return scan, nil
}

// parseSXMHeader splits the text header into a key-value map. Keys are
// lowercased; the Z-CONTROLLER table flattens to "z-controller>column"
// keys; the DATA_INFO table is returned separately as the channel list.
func parseSXMHeader(text string) (types.Header, []dataInfoRow, error) {
	header := make(types.Header)
	var channels []dataInfoRow

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r")
		trimmed := strings.TrimSpace(line)
		if !isSXMKey(trimmed) {
			continue
		}
		key := strings.ToLower(trimmed[1 : len(trimmed)-1])
		if key == strings.ToLower(strings.Trim(sxmHeaderEnd, ":")) {
			break
		}

		// Collect value lines until the next key line.
		var values []string
		for i+1 < len(lines) {
			next := strings.TrimRight(lines[i+1], "\r")
			if isSXMKey(strings.TrimSpace(next)) {
				break
			}
			values = append(values, next)
			i++
		}

		switch key {
		case "data_info":
			channels = parseDataInfo(values)
		case "z-controller":
			flattenTable(header, key, values)
		default:
			header[key] = strings.TrimSpace(strings.Join(values, " "))
		}
	}

	if len(channels) == 0 {
		return nil, nil, fmt.Errorf("no DATA_INFO channel table in header")
	}
	return header, channels, nil
}

func isSXMKey(s string) bool {
	return len(s) > 2 && strings.HasPrefix(s, ":") && strings.HasSuffix(s, ":")
}

// flattenTable turns a single-row tab-separated table into
// "section>column" header entries.
func flattenTable(header types.Header, section string, lines []string) {
	var rows [][]string
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		rows = append(rows, splitTabs(l))
	}
	if len(rows) < 2 {
		return
	}
	cols, vals := rows[0], rows[1]
	for i, col := range cols {
		if i >= len(vals) {
			break
		}
		header[section+">"+strings.ToLower(col)] = strings.TrimSpace(vals[i])
	}
}

func parseDataInfo(lines []string) []dataInfoRow {
	var rows []dataInfoRow
	var nameIdx, dirIdx = -1, -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		fields := splitTabs(l)
		if nameIdx < 0 {
			for i, f := range fields {
				switch strings.ToLower(f) {
				case "name":
					nameIdx = i
				case "direction":
					dirIdx = i
				}
			}
			continue
		}
		if nameIdx >= len(fields) {
			continue
		}
		row := dataInfoRow{name: fields[nameIdx], direction: "both"}
		if dirIdx >= 0 && dirIdx < len(fields) {
			row.direction = strings.ToLower(fields[dirIdx])
		}
		rows = append(rows, row)
	}
	return rows
}

func splitTabs(line string) []string {
	parts := strings.Split(line, "\t")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSXMFrames decodes the binary body: one frame per channel direction,
// forward first. Backward frames are recorded right-to-left and are
// mirrored here so both directions share the forward orientation.
func readSXMFrames(scan *types.ScanFile, channels []dataInfoRow, body []byte) error {
	frameVals := scan.PixelsX * scan.PixelsY
	frameBytes := frameVals * 4
	offset := 0

	readFrame := func() ([][]float64, error) {
		if offset+frameBytes > len(body) {
			return nil, fmt.Errorf("truncated scan data: need %d bytes, have %d", frameBytes, len(body)-offset)
		}
		frame := make([][]float64, scan.PixelsY)
		for y := 0; y < scan.PixelsY; y++ {
			row := make([]float64, scan.PixelsX)
			for x := 0; x < scan.PixelsX; x++ {
				bits := binary.BigEndian.Uint32(body[offset:])
				row[x] = float64(math.Float32frombits(bits))
				offset += 4
			}
			frame[y] = row
		}
		return frame, nil
	}

	for _, ch := range channels {
		fwd, err := readFrame()
		if err != nil {
			return fmt.Errorf("channel %s (fwd): %w", ch.name, err)
		}
		c := &types.ScanChannel{Forward: fwd}
		if ch.direction == "both" {
			bwd, err := readFrame()
			if err != nil {
				return fmt.Errorf("channel %s (bwd): %w", ch.name, err)
			}
			for _, row := range bwd {
				reverseRow(row)
			}
			c.Backward = bwd
		}
		scan.Channels[ch.name] = c
	}
	return nil
}

func reverseRow(row []float64) {
	for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
		row[i], row[j] = row[j], row[i]
	}
}
