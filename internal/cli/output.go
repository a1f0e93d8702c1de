package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/parseltongue-dev/parseltongue/internal/stream"
)

// writeResult serializes a scan result as indented JSON, either to the
// given file or to stdout when path is empty.
func writeResult(result *stream.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result to %s: %w", path, err)
	}
	return nil
}
