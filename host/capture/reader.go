package capture

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"goquarium/host/logging"
)

// Sample is one telemetry record: the firmware clock in milliseconds,
// the raw pot reading and the raw servo command on the reporting axis.
type Sample struct {
	TimeMS uint64
	Pot    int
	Cmd    int
}

// ParseLine decodes one telemetry line, "<ms> <pot> <cmd>".
func ParseLine(line string) (Sample, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Sample{}, fmt.Errorf("want 3 fields, got %d", len(fields))
	}

	t, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("bad time field %q: %w", fields[0], err)
	}
	pot, err := strconv.Atoi(fields[1])
	if err != nil {
		return Sample{}, fmt.Errorf("bad pot field %q: %w", fields[1], err)
	}
	cmd, err := strconv.Atoi(fields[2])
	if err != nil {
		return Sample{}, fmt.Errorf("bad cmd field %q: %w", fields[2], err)
	}

	return Sample{TimeMS: t, Pot: pot, Cmd: cmd}, nil
}

// Reader decodes telemetry samples from a stream. Blank lines and '#'
// comment lines pass silently; anything else that fails to parse is
// counted and skipped, so a capture survives boot noise on the link.
type Reader struct {
	scanner *bufio.Scanner
	dropped int
}

// NewReader wraps a stream, typically an open Port.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next sample, or io.EOF when the stream ends.
func (r *Reader) Next() (Sample, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sample, err := ParseLine(line)
		if err != nil {
			r.dropped++
			logging.Warn("skipping malformed telemetry line", "line", line, "err", err)
			continue
		}
		return sample, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Sample{}, err
	}
	return Sample{}, io.EOF
}

// Dropped reports how many malformed lines were skipped so far.
func (r *Reader) Dropped() int {
	return r.dropped
}
