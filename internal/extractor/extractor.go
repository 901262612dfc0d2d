package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sechaba/ragwatch/pkg/types"
)

const (
	// DefaultMaxFileSize is the largest file the extractor will read (50MB)
	DefaultMaxFileSize int64 = 50 * 1024 * 1024
)

// handlerFunc extracts text from a file of a known format
type handlerFunc func(path string) (string, error)

// Extractor turns files of many formats into plain text.
// Unknown extensions fall back to plain-text reading when the content looks
// textual; binary content is rejected as unsupported.
type Extractor struct {
	maxFileSize int64
	handlers    map[string]handlerFunc
}

// New creates an Extractor with the given size limit.
// A non-positive limit selects DefaultMaxFileSize.
func New(maxFileSize int64) *Extractor {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	e := &Extractor{maxFileSize: maxFileSize}
	e.handlers = map[string]handlerFunc{
		// Text and markup notes
		".txt": e.readTextFile,
		".md":  e.readTextFile,
		".rst": e.readTextFile,
		".log": e.readTextFile,

		// Data files
		".json": e.readJSON,
		".csv":  e.readCSV,
		".tsv":  e.readTSV,
		".xml":  e.readMarkup,
		".html": e.readMarkup,
		".htm":  e.readMarkup,

		// Code files
		".go":   e.readTextFile,
		".py":   e.readTextFile,
		".js":   e.readTextFile,
		".java": e.readTextFile,
		".c":    e.readTextFile,
		".cpp":  e.readTextFile,
		".h":    e.readTextFile,
		".css":  e.readTextFile,
		".sql":  e.readTextFile,
		".sh":   e.readTextFile,
		".yml":  e.readTextFile,
		".yaml": e.readTextFile,

		// Archives: indexed as a listing of their contents
		".zip": e.readArchive,
		".tar": e.readArchive,
		".gz":  e.readArchive,
		".tgz": e.readArchive,

		// SQLite databases rendered as schema plus sample rows
		".db":      e.readSQLite,
		".sqlite":  e.readSQLite,
		".sqlite3": e.readSQLite,
	}
	return e
}

// MaxFileSize returns the configured size limit in bytes
func (e *Extractor) MaxFileSize() int64 {
	return e.maxFileSize
}

// Supports reports whether the extension has a dedicated handler
func (e *Extractor) Supports(path string) bool {
	_, ok := e.handlers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extract reads the file at path and returns its text content.
// Failures are always *types.ExtractionError with a classified kind.
func (e *Extractor) Extract(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", types.NewExtractionError(types.ExtractIOError, path, err)
	}
	if info.IsDir() {
		return "", types.NewExtractionError(types.ExtractUnsupported, path,
			fmt.Errorf("path is a directory"))
	}
	if info.Size() > e.maxFileSize {
		return "", types.NewExtractionError(types.ExtractTooLarge, path,
			fmt.Errorf("%d bytes exceeds limit of %d", info.Size(), e.maxFileSize))
	}
	if info.Size() == 0 {
		return "", nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if handler, ok := e.handlers[ext]; ok {
		text, err := handler(path)
		if err != nil {
			return "", wrapHandlerError(path, err)
		}
		return text, nil
	}

	// Unknown extension: accept it if the content reads as text
	text, err := e.readTextFile(path)
	if err != nil {
		return "", wrapHandlerError(path, err)
	}
	if looksBinary(text) {
		return "", types.NewExtractionError(types.ExtractUnsupported, path,
			fmt.Errorf("unrecognized binary format %q", ext))
	}
	return text, nil
}

// wrapHandlerError classifies a handler failure, passing through errors that
// are already typed
func wrapHandlerError(path string, err error) error {
	if ee, ok := err.(*types.ExtractionError); ok {
		return ee
	}
	if os.IsNotExist(err) || os.IsPermission(err) {
		return types.NewExtractionError(types.ExtractIOError, path, err)
	}
	return types.NewExtractionError(types.ExtractCorrupted, path, err)
}

// looksBinary reports whether extracted text contains NUL bytes, the usual
// tell for binary content read as text
func looksBinary(text string) bool {
	return strings.ContainsRune(text, '\x00')
}
