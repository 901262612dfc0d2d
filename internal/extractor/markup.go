package extractor

import (
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

// readMarkup strips tags from HTML and XML files, keeping only the visible
// text. Scripts and styles are dropped first since their contents are noise
// for retrieval.
func (e *Extractor) readMarkup(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return e.readTextFile(path)
	}

	doc.Find("script, style").Remove()

	var parts []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n"), nil
}
