package formatter

import (
	"fmt"
	"strings"

	"mapscout/internal/scraper"
)

// Formats lists the accepted names for Format.
var Formats = []string{"csv", "json", "markdown", "html", "text"}

func Format(content scraper.Content, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "html":
		return content.ToHTML()
	case "text", "txt":
		return content.ToText()
	case "markdown", "md":
		return content.ToMarkdown()
	case "csv":
		return content.ToCSV()
	case "json":
		b, err := content.ToJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}
