package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/DonRumata710/quellog/logentry"
	"github.com/DonRumata710/quellog/merge"
)

// ExportFormat selects WriteAll's output encoding.
type ExportFormat int

const (
	ExportText ExportFormat = iota
	ExportJSON
	ExportMarkdown
)

// entryIterator is the minimal cursor WriteAll consumes; satisfied by both
// *merge.Iterator and *filter.Iterator without an import-cycle-forcing
// dependency on either package.
type entryIterator interface {
	Next() (logentry.LogEntry, bool)
}

// ctxEntryIterator is the cancellation-aware cursor *merge.Iterator and
// *filter.Iterator both actually satisfy. WriteAll prefers it when available
// so a caller context can stop a long drain between heap pops instead of
// running it to completion regardless.
type ctxEntryIterator interface {
	NextCtx(ctx context.Context) (logentry.LogEntry, bool, error)
}

// nextEntry pulls one entry from it, checking ctx first. If it implements
// ctxEntryIterator the check happens right before the underlying heap pop;
// otherwise ctx is checked here and it.Next is used as-is.
func nextEntry(ctx context.Context, it entryIterator) (logentry.LogEntry, bool, error) {
	if cit, ok := it.(ctxEntryIterator); ok {
		return cit.NextCtx(ctx)
	}
	select {
	case <-ctx.Done():
		return logentry.LogEntry{}, false, merge.ErrCancelled
	default:
	}
	entry, ok := it.Next()
	return entry, ok, nil
}

// jsonLine is the on-the-wire shape for ExportJSON.
type jsonLine struct {
	Module       string            `json:"module"`
	Time         time.Time         `json:"time"`
	Line         string            `json:"line"`
	Continuation string            `json:"continuation,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
}

// WriteAll drains it to completion, writing every entry to w in the
// requested format. It stops and returns w's error if a write fails, or
// merge.ErrCancelled if ctx is done before the drain finishes.
func WriteAll(ctx context.Context, w io.Writer, it entryIterator, format ExportFormat) error {
	bw := bufio.NewWriter(w)

	var err error
	switch format {
	case ExportJSON:
		err = writeJSON(ctx, bw, it)
	case ExportMarkdown:
		err = writeMarkdown(ctx, bw, it)
	default:
		err = writeText(ctx, bw, it)
	}
	if flushErr := bw.Flush(); err == nil {
		err = flushErr
	}
	return err
}

func writeText(ctx context.Context, w *bufio.Writer, it entryIterator) error {
	for {
		entry, ok, err := nextEntry(ctx, it)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", entry.Time.Format(time.RFC3339Nano), entry.Module, entry.RawLine); err != nil {
			return err
		}
		if entry.Continuation != "" {
			if _, err := fmt.Fprintln(w, entry.Continuation); err != nil {
				return err
			}
		}
	}
}

func writeJSON(ctx context.Context, w *bufio.Writer, it entryIterator) error {
	enc := json.NewEncoder(w)
	for {
		entry, ok, err := nextEntry(ctx, it)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		line := jsonLine{
			Module:       entry.Module,
			Time:         entry.Time,
			Line:         entry.RawLine,
			Continuation: entry.Continuation,
		}
		if len(entry.Fields) > 0 {
			line.Fields = make(map[string]string, len(entry.Fields))
			for name, v := range entry.Fields {
				line.Fields[name] = v.String()
			}
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
}

func writeMarkdown(ctx context.Context, w *bufio.Writer, it entryIterator) error {
	if _, err := fmt.Fprintln(w, "| time | module | line |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---|---|"); err != nil {
		return err
	}
	for {
		entry, ok, err := nextEntry(ctx, it)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s |\n",
			entry.Time.Format(time.RFC3339Nano), entry.Module, escapeMarkdownCell(entry.RawLine)); err != nil {
			return err
		}
	}
}

func escapeMarkdownCell(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
