package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Supported serialization formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Serialize renders v in the given format. YAML uses yaml struct tags and a
// two-space indent; JSON is indented with two spaces. Output always ends in
// a newline.
func Serialize(v any, format string) ([]byte, error) {
	switch format {
	case "", FormatYAML:
		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("serializing YAML: %w", err)
		}

		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("serializing YAML: %w", err)
		}

		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("serializing JSON: %w", err)
		}

		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q: must be one of yaml, json", format)
	}
}
