package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/DonRumata710/quellog/filter"
	"github.com/DonRumata710/quellog/ingest"
	"github.com/DonRumata710/quellog/logentry"
	"github.com/DonRumata710/quellog/logstore"
	"github.com/DonRumata710/quellog/merge"
	"github.com/DonRumata710/quellog/worker"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stream is the common surface runIngest needs from either a bare
// *merge.Iterator or a *filter.Iterator wrapping one.
type stream interface {
	Next() (logentry.LogEntry, bool)
	Snapshot() merge.Cache
}

// runIngest wires the ingestion façade, the merge iterator, the optional
// filter, and the chosen export format around a single dedicated worker.
func runIngest(cmd *cobra.Command, args []string) error {
	path := configFile
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		cfg, err := loadFileConfig(path, explicit)
		if err != nil {
			return fmt.Errorf("loading config %s: %w", path, err)
		}
		applyFileConfig(cfg, cmd.Flags().Changed)
	}

	begin, end, err := parseDateTimes(beginTime, endTime)
	if err != nil {
		return err
	}

	engine := worker.Start()
	defer engine.Stop()

	handle := engine.Submit(func(ctx context.Context) (any, error) {
		return ingest.Open(args, ingest.Options{CatalogDir: catalogDir, NoBuiltin: noBuiltin})
	})
	result, err := handle.Wait(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}
	session := result.(*logstore.Session)

	if len(moduleFilter) > 0 || !begin.IsZero() || !end.IsZero() {
		session = session.Narrow(moduleFilter, begin, end)
	}

	if listEnum != "" {
		return listEnumValues(cmd.Context(), session, listEnum)
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		lo, hi := session.Range()
		fmt.Fprintf(os.Stderr, "[INFO] %d module(s), %s to %s\n",
			len(session.Modules()), lo.Format(dateTimeFormat), hi.Format(dateTimeFormat))
	}

	var cache merge.Cache
	haveCache := false
	if resumeFile != "" {
		if data, err := os.ReadFile(resumeFile); err == nil {
			if err := json.Unmarshal(data, &cache); err != nil {
				log.Printf("[WARN] Ignoring unreadable resume cache %s: %v", resumeFile, err)
			} else {
				haveCache = true
			}
		}
	}

	var it *merge.Iterator
	lo, hi := session.Range()
	if haveCache {
		it, err = merge.Reopen(session, !reverseFlag, cache, lo, hi)
	} else if reverseFlag {
		it, err = merge.OpenReverse(session)
	} else {
		it, err = merge.Open(session)
	}
	if err != nil {
		return fmt.Errorf("opening iterator: %w", err)
	}
	defer it.Close()

	var s stream = it
	if lf := buildLogFilter(); lf != nil {
		s = filter.Wrap(it, lf)
	}

	format := ingest.ExportText
	switch {
	case jsonFlag:
		format = ingest.ExportJSON
	case mdFlag:
		format = ingest.ExportMarkdown
	}

	if err := ingest.WriteAll(cmd.Context(), os.Stdout, s, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if resumeFile != "" {
		snap := s.Snapshot()
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding resume cache: %w", err)
		}
		if err := os.WriteFile(resumeFile, data, 0o644); err != nil {
			return fmt.Errorf("writing resume cache %s: %w", resumeFile, err)
		}
	}

	return nil
}

// listEnumValues drains a full forward pass over session so every observed
// value of field is accumulated, then prints the distinct set. ctx is
// checked before every heap pop, so a cancelled request stops the drain
// instead of running it to completion regardless.
func listEnumValues(ctx context.Context, session *logstore.Session, field string) error {
	it, err := merge.Open(session)
	if err != nil {
		return fmt.Errorf("opening iterator: %w", err)
	}
	defer it.Close()

	for {
		_, ok, err := it.NextCtx(ctx)
		if err != nil {
			return fmt.Errorf("listing enum values: %w", err)
		}
		if !ok {
			break
		}
	}

	for _, v := range session.EnumValues(field) {
		fmt.Fprintln(os.Stdout, v.String())
	}
	return nil
}

// buildLogFilter translates --filter-module/--filter-field into a
// filter.LogFilter, or nil if neither flag was set.
func buildLogFilter() *filter.LogFilter {
	if len(filterModule) == 0 && len(filterField) == 0 {
		return nil
	}

	f := &filter.LogFilter{}
	if len(filterModule) > 0 {
		f.AllowModules = make(map[string]bool, len(filterModule))
		for _, m := range filterModule {
			f.AllowModules[m] = true
		}
	}

	if len(filterField) > 0 {
		f.Fields = make(map[string][]filter.FieldCriterion)
		for _, spec := range filterField {
			name, value, ok := strings.Cut(spec, "=")
			if !ok {
				log.Printf("[WARN] Ignoring malformed --filter-field %q, expected name=value", spec)
				continue
			}
			var crit filter.FieldCriterion
			if re, err := regexp.Compile(value); err == nil && strings.ContainsAny(value, ".*+?[](){}|^$") {
				crit.Regex = re
			} else {
				crit.Values = []string{value}
			}
			f.Fields[name] = append(f.Fields[name], crit)
		}
	}

	return f
}
