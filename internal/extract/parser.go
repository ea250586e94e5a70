package extract

import (
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"
)

const (
	mimePDF  = "application/pdf"
	mimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// parseFile extracts the full text of a downloaded document, dispatching on
// the lowercased file extension. Anything outside the supported set is a
// per-item unsupported-format error.
func parseFile(path string, ext string) (string, error) {
	switch ext {
	case "pdf":
		return convertWith(path, mimePDF)
	case "pptx":
		return convertWith(path, mimePPTX)
	case "txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func convertWith(path string, mimeType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open scratch file: %w", err)
	}
	defer f.Close()

	res, err := docconv.Convert(f, mimeType, false)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", mimeType, err)
	}
	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", fmt.Errorf("no text extracted")
	}
	return text, nil
}
