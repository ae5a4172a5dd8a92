package bubbletea

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"docchat"
)

// loadUpload resolves a path or glob pattern to a single file and reads it
// into an upload. Media type comes from the file extension; the orchestrator
// decides whether it is acceptable.
func loadUpload(pattern string) (docchat.Upload, error) {
	path, err := resolvePath(pattern)
	if err != nil {
		return docchat.Upload{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return docchat.Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return docchat.Upload{
		Name:      filepath.Base(path),
		MediaType: mediaTypeFor(path),
		Data:      data,
	}, nil
}

// resolvePath expands ~ and glob patterns. A pattern that matches several
// files resolves to the first PDF match, falling back to the first match.
func resolvePath(pattern string) (string, error) {
	if strings.HasPrefix(pattern, "~"+string(filepath.Separator)) || pattern == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~: %w", err)
		}
		pattern = filepath.Join(home, strings.TrimPrefix(pattern, "~"))
	}

	if !strings.ContainsAny(pattern, "*?[{") {
		return pattern, nil
	}

	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		return "", fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return "", fmt.Errorf("matching %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no files match %s", pattern)
	}

	for _, match := range matches {
		if strings.EqualFold(filepath.Ext(match), ".pdf") {
			return match, nil
		}
	}
	return matches[0], nil
}

func mediaTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return docchat.PDFMediaType
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
