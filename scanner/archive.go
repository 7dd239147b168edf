package scanner

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// archiveMember is one log-bearing file extracted from an archive, fully
// buffered in memory; archive members are expected to be individual log
// files, not re-nested archives of their own.
type archiveMember struct {
	Name string // path of the member inside the archive
	Data []byte
}

// isArchive reports whether name names a supported archive container.
func isArchive(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return true
	case strings.HasSuffix(lower, ".7z"):
		return true
	case strings.HasSuffix(lower, ".tar"),
		strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tar.zstd"), strings.HasSuffix(lower, ".tzst"):
		return true
	}
	return false
}

// listArchiveMembers expands path into its regular-file members.
func listArchiveMembers(path string) ([]archiveMember, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return listZipMembers(path)
	case strings.HasSuffix(lower, ".7z"):
		return listSevenZipMembers(path)
	default:
		return listTarMembers(path)
	}
}

func listZipMembers(path string) ([]archiveMember, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening zip archive %s: %w", path, err)
	}
	defer zr.Close()

	var members []archiveMember
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || f.UncompressedSize64 == 0 {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading zip entry %s in %s: %w", f.Name, path, err)
		}
		data, err := readAllCompact(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading zip entry %s in %s: %w", f.Name, path, err)
		}
		members = append(members, archiveMember{Name: f.Name, Data: data})
	}
	return members, nil
}

func listSevenZipMembers(path string) ([]archiveMember, error) {
	zr, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening 7z archive %s: %w", path, err)
	}
	defer zr.Close()

	var members []archiveMember
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading 7z entry %s in %s: %w", f.Name, path, err)
		}
		data, err := readAllCompact(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading 7z entry %s in %s: %w", f.Name, path, err)
		}
		members = append(members, archiveMember{Name: f.Name, Data: data})
	}
	return members, nil
}

func listTarMembers(path string) ([]archiveMember, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tar archive %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = file
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := newParallelGzipReader(file)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream for tar archive %s: %w", path, err)
		}
		defer gr.Close()
		r = gr
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tar.zstd"), strings.HasSuffix(lower, ".tzst"):
		zr, err := newZstdDecoder(file)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream for tar archive %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	tr := tar.NewReader(r)
	var members []archiveMember
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar archive %s: %w", path, err)
		}
		if hdr.Typeflag != tar.TypeReg && hdr.Typeflag != tar.TypeRegA {
			continue
		}
		if hdr.Size == 0 {
			continue
		}
		data, err := readAllCompact(io.LimitReader(tr, hdr.Size))
		if err != nil {
			return nil, fmt.Errorf("reading tar entry %s in %s: %w", hdr.Name, path, err)
		}
		members = append(members, archiveMember{Name: hdr.Name, Data: data})
	}
	return members, nil
}

// memberDisplayName builds the pseudo-path used to address an archive
// member for module derivation and format matching: "<archive>!<member>".
func memberDisplayName(archivePath, memberName string) string {
	return filepath.ToSlash(archivePath) + "!" + filepath.ToSlash(memberName)
}
