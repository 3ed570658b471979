package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ExtractJSONObject locates the span between the first '{' and the last
// '}' of a raw model response and returns it, tolerating surrounding
// prose. The span is not guaranteed to parse; callers validate it.
func ExtractJSONObject(raw string) ([]byte, error) {
	s := strings.Index(raw, "{")
	e := strings.LastIndex(raw, "}")
	if s == -1 || e == -1 || e <= s {
		return nil, fmt.Errorf("no JSON object in response (%d bytes)", len(raw))
	}
	return []byte(raw[s : e+1]), nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
