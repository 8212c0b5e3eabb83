// ABOUTME: Loader for the UI-hint override file.
// ABOUTME: The file is JSON with comments, keyed app -> resource -> field -> hint.

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/pyconkr/console/internal/backend"
)

// LoadHintOverrides reads path. An empty path yields no overrides.
func LoadHintOverrides(path string) (backend.HintOverrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hint overrides: %w", err)
	}
	return ParseHintOverrides(data)
}

// ParseHintOverrides decodes a JSONC override document.
func ParseHintOverrides(data []byte) (backend.HintOverrides, error) {
	var out backend.HintOverrides
	if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil {
		return nil, fmt.Errorf("invalid hint overrides: %w", err)
	}
	return out, nil
}
