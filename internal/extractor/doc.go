// Package extractor turns files of many formats into plain text for indexing.
//
// A per-extension handler registry maps known formats to readers: plain
// text/code, JSON, CSV/TSV, HTML/XML, archives (indexed as content listings),
// and SQLite databases (rendered as schema plus sample rows). Unknown
// extensions fall back to plain-text reading when the content is textual.
//
// All failures are *types.ExtractionError with a classified kind
// (unsupported, corrupted, too_large, io_error), so the sync engine can
// record a precise failure reason per file.
//
//	ex := extractor.New(50 * 1024 * 1024)
//	text, err := ex.Extract("/home/user/notes/report.html")
package extractor
