package scanner

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logentry"
	"github.com/DonRumata710/quellog/logio"
	"github.com/DonRumata710/quellog/logstore"
)

// candidate is one file or archive member admitted by a format match,
// still carrying its directory chain for module-name disambiguation.
type candidate struct {
	moduleBase string   // module name derived from filename_regex or stem
	dirChain   []string // directory components, innermost first
	display    string   // human-readable path, used for logging and as Metadata.Filename
	format     *catalog.Format
	open       logstore.Opener
	start      time.Time
	end        time.Time
}

// Scan walks paths (files, directories, or archives) and produces the flat
// per-module file list a logstore.Index is built from.
func Scan(paths []string, formats []*catalog.Format) ([]logstore.FileEntry, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Printf("[WARN] Cannot stat %s: %v", p, err)
			continue
		}
		if info.IsDir() {
			err := filepath.Walk(p, func(path string, fi os.FileInfo, err error) error {
				if err != nil {
					log.Printf("[WARN] Cannot walk %s: %v", path, err)
					return nil
				}
				if !fi.IsDir() {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", p, err)
			}
			continue
		}
		files = append(files, p)
	}

	var candidates []candidate
	for _, path := range files {
		if isArchive(path) {
			members, err := listArchiveMembers(path)
			if err != nil {
				log.Printf("[WARN] Cannot read archive %s: %v", path, err)
				continue
			}
			for _, m := range members {
				c, ok := probeMember(path, m, formats)
				if ok {
					candidates = append(candidates, c)
				}
			}
			continue
		}

		c, ok := probeFile(path, formats)
		if ok {
			candidates = append(candidates, c)
		}
	}

	modules := disambiguateModules(candidates)

	entries := make([]logstore.FileEntry, 0, len(candidates))
	seen := make(map[string]map[time.Time]bool)
	for i, c := range candidates {
		module := modules[i]
		if seen[module] == nil {
			seen[module] = make(map[time.Time]bool)
		}
		if seen[module][c.start] {
			log.Printf("[WARN] Dropping duplicate (module=%s, start=%v) file %s", module, c.start, c.display)
			continue
		}
		seen[module][c.start] = true

		entries = append(entries, logstore.FileEntry{
			Module: module,
			Metadata: logstore.Metadata{
				Format:   c.format,
				Filename: c.display,
				Open:     c.open,
			},
			Start: c.start,
			End:   c.end,
		})
	}

	return entries, nil
}

// probeFile matches a plain (possibly compressed) file against the catalog
// and, on success, probes its start/end time.
func probeFile(path string, formats []*catalog.Format) (candidate, bool) {
	suffix, trimmed := compressionSuffix(path)
	stem, ext := stemAndExt(trimmed)

	f, module := matchFormat(stem, ext, formats)
	if f == nil {
		return candidate{}, false
	}

	open := func() (*logio.Reader, error) {
		src, err := openFileSource(path, suffix)
		if err != nil {
			return nil, err
		}
		return logio.Open(src, f.Encoding, f.Comments)
	}

	start, end, ok := probeTimes(open, f)
	if !ok {
		return candidate{}, false
	}

	return candidate{
		moduleBase: module,
		dirChain:   dirChain(path),
		display:    path,
		format:     f,
		open:       open,
		start:      start,
		end:        end,
	}, true
}

// probeMember matches one already-buffered archive member against the
// catalog and probes its start/end time.
func probeMember(archivePath string, m archiveMember, formats []*catalog.Format) (candidate, bool) {
	suffix, trimmed := compressionSuffix(m.Name)
	stem, ext := stemAndExt(trimmed)

	f, module := matchFormat(stem, ext, formats)
	if f == nil {
		return candidate{}, false
	}

	data := m.Data
	open := func() (*logio.Reader, error) {
		raw := data
		if suffix != "" {
			dr, err := decompress(newMemReader(raw), suffix)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
			}
			defer dr.Close()
			decoded, err := readAllCompact(dr)
			if err != nil {
				return nil, err
			}
			raw = decoded
		}
		return logio.Open(newMemSource(raw), f.Encoding, f.Comments)
	}

	start, end, ok := probeTimes(open, f)
	if !ok {
		return candidate{}, false
	}

	return candidate{
		moduleBase: module,
		dirChain:   dirChain(m.Name),
		display:    memberDisplayName(archivePath, m.Name),
		format:     f,
		open:       open,
		start:      start,
		end:        end,
	}, true
}

// matchFormat returns the first catalog format matching ext/stem, and the
// module name it implies: the filename_regex's "module" capture group if
// present, otherwise the stem itself.
func matchFormat(stem, ext string, formats []*catalog.Format) (*catalog.Format, string) {
	for _, f := range formats {
		if f.Extension != "" && !strings.EqualFold(f.Extension, ext) {
			continue
		}

		module := stem
		if f.FilenameRegex != nil {
			match := f.FilenameRegex.FindStringSubmatch(stem)
			if match == nil {
				continue
			}
			for i, name := range f.FilenameRegex.SubexpNames() {
				if name == "module" && i < len(match) && match[i] != "" {
					module = match[i]
				}
			}
		}

		if len(f.Modules) > 0 && !f.Modules[module] {
			continue
		}

		return f, module
	}
	return nil, ""
}

// probeTimes opens the source fresh, reads forward to the first
// entry-starter line for start_time, then reopens and reads backward to the
// last entry-starter line for end_time.
func probeTimes(open logstore.Opener, f *catalog.Format) (time.Time, time.Time, bool) {
	fwd, err := open()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	start, ok := firstEntryTime(fwd, f)
	fwd.Close()
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	bwd, err := open()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	bwd.GotoEnd()
	end, ok := lastEntryTime(bwd, f)
	bwd.Close()
	if !ok {
		end = start
	}
	return start, end, true
}

func firstEntryTime(r *logio.Reader, f *catalog.Format) (time.Time, bool) {
	for {
		line, ok := r.NextLine()
		if !ok {
			return time.Time{}, false
		}
		parts, err := logentry.SplitLine(line, f)
		if err != nil {
			continue
		}
		if !logentry.IsEntryStarter(parts, f) {
			continue
		}
		_, t, err := logentry.Coerce(parts, f)
		if err != nil {
			continue
		}
		return t, true
	}
}

func lastEntryTime(r *logio.Reader, f *catalog.Format) (time.Time, bool) {
	for {
		line, ok, err := r.PrevLine()
		if err != nil || !ok {
			return time.Time{}, false
		}
		parts, err := logentry.SplitLine(line, f)
		if err != nil {
			continue
		}
		if !logentry.IsEntryStarter(parts, f) {
			continue
		}
		_, t, err := logentry.Coerce(parts, f)
		if err != nil {
			continue
		}
		return t, true
	}
}

func stemAndExt(path string) (stem, ext string) {
	base := filepath.Base(path)
	ext = strings.TrimPrefix(filepath.Ext(base), ".")
	stem = strings.TrimSuffix(base, filepath.Ext(base))
	return stem, ext
}

func dirChain(path string) []string {
	dir := filepath.ToSlash(filepath.Dir(path))
	parts := strings.Split(dir, "/")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// disambiguateModules resolves module-name collisions: candidates sharing a
// moduleBase but drawn from different directory chains are prefixed with
// the shortest directory-component chain that makes the composed name
// unique within the group.
func disambiguateModules(candidates []candidate) []string {
	groups := make(map[string][]int)
	for i, c := range candidates {
		groups[c.moduleBase] = append(groups[c.moduleBase], i)
	}

	result := make([]string, len(candidates))
	for base, idxs := range groups {
		if len(idxs) == 1 {
			result[idxs[0]] = base
			continue
		}

		distinct := make(map[string]bool)
		for _, i := range idxs {
			distinct[strings.Join(candidates[i].dirChain, "/")] = true
		}
		if len(distinct) <= 1 {
			for _, i := range idxs {
				result[i] = base
			}
			continue
		}

		maxLen := 0
		for _, i := range idxs {
			if len(candidates[i].dirChain) > maxLen {
				maxLen = len(candidates[i].dirChain)
			}
		}

		for k := 1; k <= maxLen; k++ {
			composed := make(map[string]int)
			ok := true
			for _, i := range idxs {
				chain := candidates[i].dirChain
				n := k
				if n > len(chain) {
					n = len(chain)
				}
				prefix := strings.Join(reversed(chain[:n]), "/")
				key := prefix + "/" + base
				composed[key]++
			}
			for _, count := range composed {
				if count > 1 {
					ok = false
					break
				}
			}
			if ok {
				for _, i := range idxs {
					chain := candidates[i].dirChain
					n := k
					if n > len(chain) {
						n = len(chain)
					}
					prefix := strings.Join(reversed(chain[:n]), "/")
					result[i] = prefix + "/" + base
				}
				break
			}
			if k == maxLen {
				for _, i := range idxs {
					result[i] = strings.Join(reversed(candidates[i].dirChain), "/") + "/" + base
				}
			}
		}
	}
	return result
}

func reversed(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
