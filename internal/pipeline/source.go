package pipeline

import (
	"fmt"
	"io"
	"os"
)

// ReadHTML loads a saved page instead of fetching it. "-" reads stdin.
func ReadHTML(path string) (string, error) {
	if path == "-" {
		blob, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(blob), nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read html file: %w", err)
	}
	return string(blob), nil
}
