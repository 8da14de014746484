package entities

// Manifest is the declarative configuration of a sandbox session.
// It is applied once during the configuration phase.
type Manifest struct {
	Entry            *EntryPoint `json:"entry,omitempty" yaml:"entry,omitempty"`
	Name             string      `json:"name" yaml:"name" validate:"required" jsonschema:"minLength=1"`
	Description      string      `json:"description,omitempty" yaml:"description,omitempty"`
	Reserved         []string    `json:"reserved,omitempty" yaml:"reserved,omitempty" validate:"dive,required"`
	Allowed          []string    `json:"allowed,omitempty" yaml:"allowed,omitempty" validate:"dive,required"`
	Guests           []GuestTree `json:"guests,omitempty" yaml:"guests,omitempty" validate:"dive"`
	MinDepth         int         `json:"min_depth,omitempty" yaml:"min_depth,omitempty" validate:"omitempty,min=1" jsonschema:"minimum=1"`
	ReserveDefaults  bool        `json:"reserve_defaults,omitempty" yaml:"reserve_defaults,omitempty"`
	AllowStandardSet bool        `json:"allow_standard_set,omitempty" yaml:"allow_standard_set,omitempty"`
}

// GuestTree describes a directory of guest unit files to bulk-register.
type GuestTree struct {
	// Root is the directory walked for unit files.
	Root string `json:"root" yaml:"root" validate:"required" jsonschema:"minLength=1"`

	// Extension is the unit file extension, including the dot. Defaults to ".wasm".
	Extension string `json:"extension,omitempty" yaml:"extension,omitempty" validate:"omitempty,startswith=." jsonschema:"pattern=^\\."`

	// Exclude lists doublestar globs, relative to Root, that are skipped.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" validate:"dive,glob"`
}

// EntryPoint names the guest unit a host invokes after linking.
type EntryPoint struct {
	Name   string `json:"name" yaml:"name" validate:"required" jsonschema:"minLength=1"`
	Export string `json:"export,omitempty" yaml:"export,omitempty"`
}
