// Package runtimelog implements the per-task performance log: a bounded
// in-memory window of formatted rows periodically rewritten to a
// timestamped file, so the on-disk snapshot always equals the most recent
// window.
package runtimelog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
)

const (
	defaultFlushInterval = 100
	defaultColumnWidth   = 14
	rulerWidth           = 80
)

// TimingColumns is the standard column set for task timing rows.
var TimingColumns = []string{
	"Iteration", "t_espera_us", "t_ejec_us", "t_total_us", "periodo_us",
	"Ts_Real_us", "drift_us", "%error_Ts", "%uso", "Status",
}

// TimingWidths holds the fixed widths matching TimingColumns.
var TimingWidths = []int{10, 14, 14, 14, 14, 14, 14, 12, 10, 12}

// Logger buffers formatted lines in a FIFO window of fixed capacity and
// rewrites the whole file (header plus window) on every flush. If the log
// directory cannot be created the logger degrades to memory-only and says
// so once on stderr.
type Logger struct {
	mu            sync.Mutex
	path          string
	header        string
	columns       []string
	widths        []int
	buf           []string
	capacity      int
	flushInterval int
	pending       int
	fileOK        bool
	totals        []float64
}

// New creates a logger writing to <dir>/<prefix>_runtime_<YYYYMMDD_HHMMSS>.txt.
// The directory is created if absent.
func New(prefix string, capacity int, dir string) *Logger {
	if capacity <= 0 {
		capacity = 1000
	}
	l := &Logger{
		capacity:      capacity,
		flushInterval: defaultFlushInterval,
		fileOK:        true,
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING runtimelog: cannot create %s: %v, logging to memory only\n", dir, err)
		l.fileOK = false
	}
	stamp := time.Now().Format("20060102_150405")
	l.path = filepath.Join(dir, fmt.Sprintf("%s_runtime_%s.txt", prefix, stamp))
	return l
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// SetHeader sets the informational header emitted above the column row.
func (l *Logger) SetHeader(header string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.header = header
}

// SetColumns sets the column names and optional widths. Missing widths
// default to 14.
func (l *Logger) SetColumns(columns []string, widths []int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.columns = columns
	l.widths = widths
	if len(l.widths) == 0 {
		l.widths = make([]int, len(columns))
		for i := range l.widths {
			l.widths[i] = defaultColumnWidth
		}
	}
}

// SetFlushInterval configures how many lines accumulate between disk
// writes. Zero disables auto-flush.
func (l *Logger) SetFlushInterval(interval int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushInterval = interval
}

// InitializeTaskLog installs the standard timing header and columns for a
// task running at the given frequency.
func (l *Logger) InitializeTaskLog(prefix string, frequency float64) {
	l.SetHeader(fmt.Sprintf("%s Runtime Performance Log\nFrequency: %g Hz\nSample Period: %.2f us",
		prefix, frequency, 1e6/frequency))
	l.SetColumns(TimingColumns, TimingWidths)
}

// WriteLine appends a formatted line, evicting the oldest entry when the
// window is full. The file is rewritten when the pending count reaches the
// flush interval or when force is set.
func (l *Logger) WriteLine(line string, force bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeLineLocked(line, force)
}

func (l *Logger) writeLineLocked(line string, force bool) {
	if len(l.buf) >= l.capacity {
		l.buf = l.buf[1:]
	}
	l.buf = append(l.buf, line)
	l.pending++
	if force || (l.flushInterval > 0 && l.pending >= l.flushInterval) {
		l.flushLocked()
	}
}

// WriteTimingRow formats and appends one timing row. Times are in
// microseconds; drift, %error_Ts and %uso are derived here.
func (l *Logger) WriteTimingRow(iteration int, tWaitUs, tExecUs, tTotalUs, periodUs, tsRealUs float64, status string, force bool) {
	use := tTotalUs / periodUs * 100.0
	drift := tsRealUs - periodUs
	errTs := drift / periodUs * 100.0

	line := fmt.Sprintf("%-10d%-14.2f%-14.2f%-14.2f%-14.2f%-14.2f%-14.2f%-12.2f%-10.2f%-12s",
		iteration, tWaitUs, tExecUs, tTotalUs, periodUs, tsRealUs, drift, errTs, use, status)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.totals = append(l.totals, tTotalUs)
	if len(l.totals) > l.capacity {
		l.totals = l.totals[1:]
	}
	l.writeLineLocked(line, force)
}

// Flush forces a rewrite of the file from the current window.
func (l *Logger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushLocked()
}

func (l *Logger) flushLocked() {
	l.pending = 0
	if !l.fileOK {
		return
	}
	var sb strings.Builder
	sb.WriteString(l.headerLocked())
	for _, line := range l.buf {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(l.path, []byte(sb.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING runtimelog: cannot write %s: %v, logging to memory only\n", l.path, err)
		l.fileOK = false
	}
}

func (l *Logger) headerLocked() string {
	var sb strings.Builder
	if l.header != "" {
		sb.WriteString(l.header)
		sb.WriteByte('\n')
	}
	sb.WriteString("Last Updated: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	fmt.Fprintf(&sb, "Buffer Size: %d/%d lines\n", len(l.buf), l.capacity)
	sb.WriteString(strings.Repeat("=", rulerWidth) + "\n")
	if len(l.columns) > 0 {
		for i, col := range l.columns {
			w := defaultColumnWidth
			if i < len(l.widths) {
				w = l.widths[i]
			}
			fmt.Fprintf(&sb, "%-*s", w, col)
		}
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("-", rulerWidth) + "\n")
	}
	return sb.String()
}

// Lines returns a copy of the buffered window, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.buf))
	copy(out, l.buf)
	return out
}

// Close appends a summary of the recorded cycle totals and writes the file
// one last time.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.totals) > 0 {
		mean, err := stats.Mean(l.totals)
		max, errMax := stats.Max(l.totals)
		if err == nil && errMax == nil {
			l.writeLineLocked(fmt.Sprintf("Summary: %d cycles, t_total mean %.2f us, max %.2f us",
				len(l.totals), mean, max), false)
		}
	}
	l.flushLocked()
}
