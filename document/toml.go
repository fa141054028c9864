package document

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// parseTOML decodes TOML through a generic tree. TOML tables are unordered,
// so rewrite_prefix entries come out sorted by prefix.
func parseTOML(data []byte, cfg parseConfig) (*Document, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", cfg.filename, err)
	}
	if tree == nil {
		tree = map[string]any{}
	}

	js, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.filename, err)
	}
	return parseJSON(js, cfg)
}
