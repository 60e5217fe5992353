// Package stream drives the line-by-line read from input to output, with
// compression codecs attached externally, flushing on completion or on
// the first error.
package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Multiverse-io/anonymiser-sub000/internal/dump"
)

// ProgressFunc is invoked periodically with the running Stats so far; the
// caller decides how (and how often) to log it.
type ProgressFunc func(stats Stats)

// Stats tracks a run's progress, mirroring the shape of the teacher's
// bootstrap Statistics: a start/end timestamp pair plus running counters,
// accumulated as the stream is consumed and logged at the end.
type Stats struct {
	StartTime       time.Time
	EndTime         time.Time
	LinesRead       int
	RowsRewritten   int
	TablesProcessed []string
}

// Duration is EndTime - StartTime, zero until the run completes.
func (s Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Run drives the row/state machine over in, writing the result to out.
// Output is flushed both on success and on early termination.
func Run(in io.Reader, out io.Writer, machine *dump.Machine, progressEvery int, onProgress ProgressFunc) (Stats, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	stats := Stats{StartTime: time.Now()}
	seenTables := map[string]bool{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		stats.LinesRead = lineNo
		line := scanner.Text()

		if table, ok := copyHeaderTable(line); ok && !seenTables[table] {
			seenTables[table] = true
			stats.TablesProcessed = append(stats.TablesProcessed, table)
		}

		transformed, emit, err := machine.ProcessLine(lineNo, line)
		if err != nil {
			writer.Flush()
			stats.EndTime = time.Now()
			return stats, fmt.Errorf("stream error: %w", err)
		}
		if emit {
			if _, err := writer.WriteString(transformed); err != nil {
				return stats, fmt.Errorf("failed writing line %d: %w", lineNo, err)
			}
			if err := writer.WriteByte('\n'); err != nil {
				return stats, fmt.Errorf("failed writing line %d: %w", lineNo, err)
			}
			stats.RowsRewritten++
		}

		if progressEvery > 0 && onProgress != nil && lineNo%progressEvery == 0 {
			onProgress(stats)
		}
	}
	if err := scanner.Err(); err != nil {
		writer.Flush()
		stats.EndTime = time.Now()
		return stats, fmt.Errorf("failed reading input: %w", err)
	}

	if err := writer.Flush(); err != nil {
		stats.EndTime = time.Now()
		return stats, fmt.Errorf("failed flushing output: %w", err)
	}
	stats.EndTime = time.Now()
	return stats, nil
}

// copyHeaderTable extracts the table name from a COPY header line, the
// cheap classification Stats needs without running the dump package's
// full parser (which also validates against strategies/types).
func copyHeaderTable(line string) (string, bool) {
	if !strings.HasPrefix(line, "COPY ") || !strings.HasSuffix(line, "FROM stdin;") {
		return "", false
	}
	rest := strings.TrimPrefix(line, "COPY ")
	if i := strings.Index(rest, " ("); i >= 0 {
		return strings.ReplaceAll(rest[:i], "\"", ""), true
	}
	return "", false
}
