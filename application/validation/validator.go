// Package validation checks manifests against their JSON schema and struct
// validation tags.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/sieve/application/schema"
	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const manifestSchemaURL = "sieve://manifest.schema.json"

// ManifestValidator validates manifests in two passes: the JSON schema
// generated from entities.Manifest, then go-playground/validator tags.
type ManifestValidator struct {
	schema   *jsonschema.Schema
	validate *validator.Validate
}

// NewManifestValidator compiles the manifest schema.
func NewManifestValidator() (ports.ManifestValidator, error) {
	raw, err := schema.ManifestSchema()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(manifestSchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to add manifest schema: %w", err)
	}
	sch, err := compiler.Compile(manifestSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest schema: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(yamlFieldName)
	if err := v.RegisterValidation("glob", validateGlob); err != nil {
		return nil, fmt.Errorf("failed to register glob validation: %w", err)
	}

	return &ManifestValidator{schema: sch, validate: v}, nil
}

// Validate returns a result listing every schema and tag violation.
// The error return is reserved for failures of the validator itself.
func (v *ManifestValidator) Validate(manifest *entities.Manifest) (*entities.ValidationResult, error) {
	if manifest == nil {
		return nil, fmt.Errorf("manifest is nil")
	}
	result := &entities.ValidationResult{Valid: true}

	b, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	if err := v.schema.Validate(obj); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		for _, leaf := range leaves(ve) {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   fieldFromPointer(leaf.InstanceLocation),
				Message: leaf.Message,
			})
		}
	}

	if err := v.validate.Struct(manifest); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		for _, fe := range fieldErrs {
			result.Errors = append(result.Errors, entities.ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Manifest."),
				Message: tagMessage(fe),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// leaves flattens a schema error tree into its most specific causes.
func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

// fieldFromPointer turns a JSON pointer like "/guests/0/root" into "guests.0.root".
func fieldFromPointer(ptr string) string {
	return strings.ReplaceAll(strings.TrimPrefix(ptr, "/"), "/", ".")
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "glob":
		return fmt.Sprintf("invalid glob pattern %q", fe.Value())
	case "min":
		return "must be at least " + fe.Param()
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func validateGlob(fl validator.FieldLevel) bool {
	return doublestar.ValidatePattern(fl.Field().String())
}

func yamlFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
