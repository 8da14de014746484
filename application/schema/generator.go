// Package schema generates JSON schemas for sandbox manifests.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/sieve/domain/entities"
)

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
// Nested types are emitted under $defs; the top-level struct is expanded inline.
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
		Anonymous:      true, // no $id; callers choose the resource URL
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ManifestSchema returns the JSON schema of entities.Manifest.
func ManifestSchema() ([]byte, error) {
	return GenerateSchema(&entities.Manifest{})
}
