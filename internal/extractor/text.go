package extractor

import (
	"os"
	"strings"
	"unicode/utf8"
)

// readTextFile reads a file as text. Valid UTF-8 is returned as-is; anything
// else is decoded as Latin-1 so legacy files still yield usable text instead
// of failing outright.
func (e *Extractor) readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeLatin1(data), nil
}

// decodeLatin1 maps each byte to the equivalent Unicode code point
func decodeLatin1(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return b.String()
}
