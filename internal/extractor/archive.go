package extractor

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// maxArchiveEntries caps how many entries an archive listing includes
	maxArchiveEntries = 100
)

// readArchive indexes an archive as a listing of its contents, the same way
// the rest of the system treats opaque containers: searchable by what is
// inside them, not by their bytes.
func (e *Extractor) readArchive(path string) (string, error) {
	var entries []string
	var err error

	switch {
	case strings.HasSuffix(path, ".zip"):
		entries, err = listZip(path)
	case strings.HasSuffix(path, ".tar"):
		entries, err = listTar(path, false)
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		entries, err = listTar(path, true)
	case strings.HasSuffix(path, ".gz"):
		// Bare gzip holds a single member; index its name
		entries = []string{strings.TrimSuffix(filepath.Base(path), ".gz")}
	default:
		return fmt.Sprintf("[ARCHIVE FILE] %s", filepath.Base(path)), nil
	}
	if err != nil {
		return "", err
	}

	if len(entries) > maxArchiveEntries {
		entries = entries[:maxArchiveEntries]
	}
	return fmt.Sprintf("[ARCHIVE FILE] %s\nContents:\n%s",
		filepath.Base(path), strings.Join(entries, "\n")), nil
}

func listZip(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

func listTar(path string, gzipped bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	tr := tar.NewReader(reader)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, hdr.Name)
		if len(names) > maxArchiveEntries {
			break
		}
	}
	return names, nil
}
