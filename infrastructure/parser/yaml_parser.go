package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/ports"
	"gopkg.in/yaml.v3"
)

type parserConfig struct {
	knownFields bool
}

// ParserOption configures a YamlManifestParser.
type ParserOption func(*parserConfig)

// WithKnownFields rejects manifest keys that map to no field. Enabled by default,
// so a misspelled key like "alowed" fails instead of silently granting nothing.
func WithKnownFields(enabled bool) ParserOption {
	return func(c *parserConfig) {
		c.knownFields = enabled
	}
}

// YamlManifestParser implements ManifestParser for YAML.
type YamlManifestParser struct {
	config parserConfig
}

// NewYamlManifestParser creates a new YamlManifestParser.
func NewYamlManifestParser(opts ...ParserOption) ports.ManifestParser {
	cfg := parserConfig{knownFields: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &YamlManifestParser{config: cfg}
}

// Parse unmarshals YAML bytes into a Manifest. An empty document is an error.
func (p *YamlManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(p.config.knownFields)

	var manifest entities.Manifest
	if err := dec.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest is empty")
		}
		return nil, err
	}
	return &manifest, nil
}
