package parser_test

import (
	"testing"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/infrastructure/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestYAML = `
name: demo
description: demo sandbox
min_depth: 4
reserve_defaults: true
reserved: ["com.example.host."]
allow_standard_set: true
allowed: ["com.example.host.api.Console"]
guests:
  - root: ./guests
    extension: .wasm
    exclude: ["**/*Test.wasm"]
entry:
  name: com.example.guest.plugin.Main
  export: run
`

func TestYamlManifestParser_Parse(t *testing.T) {
	m, err := parser.NewYamlManifestParser().Parse([]byte(manifestYAML))
	require.NoError(t, err)

	assert.Equal(t, &entities.Manifest{
		Name:             "demo",
		Description:      "demo sandbox",
		MinDepth:         4,
		ReserveDefaults:  true,
		Reserved:         []string{"com.example.host."},
		AllowStandardSet: true,
		Allowed:          []string{"com.example.host.api.Console"},
		Guests: []entities.GuestTree{{
			Root:      "./guests",
			Extension: ".wasm",
			Exclude:   []string{"**/*Test.wasm"},
		}},
		Entry: &entities.EntryPoint{Name: "com.example.guest.plugin.Main", Export: "run"},
	}, m)
}

func TestYamlManifestParser_UnknownField(t *testing.T) {
	_, err := parser.NewYamlManifestParser().Parse([]byte("name: demo\nalowed: [x]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alowed")

	m, err := parser.NewYamlManifestParser(parser.WithKnownFields(false)).Parse([]byte("name: demo\nalowed: [x]\n"))
	require.NoError(t, err)
	assert.Empty(t, m.Allowed)
}

func TestYamlManifestParser_Errors(t *testing.T) {
	p := parser.NewYamlManifestParser()

	_, err := p.Parse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = p.Parse([]byte("name: [unterminated"))
	require.Error(t, err)
}
