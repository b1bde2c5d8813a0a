// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ReplaceMode selects how shapes omitted from a replacement instruction
// are treated.
type ReplaceMode string

const (
	// ModeFull clears the text of every shape not named in the
	// instruction. The shape element itself survives, so position and
	// placeholder wiring are preserved.
	ModeFull ReplaceMode = "full"

	// ModeSelective leaves shapes not named in the instruction
	// byte-identical to the input.
	ModeSelective ReplaceMode = "selective"
)

// InventoryFormat selects the inventory serialization format.
type InventoryFormat string

const (
	FormatJSON InventoryFormat = "json"
	FormatYAML InventoryFormat = "yaml"
)

// ReplaceConfig holds settings for the replacement stage.
type ReplaceConfig struct {
	// Mode is the default replacement mode: full or selective.
	Mode ReplaceMode `json:"mode" yaml:"mode"`
}

// InventoryConfig holds settings for the inventory stage.
type InventoryConfig struct {
	// Format is the default serialization format: json or yaml.
	Format InventoryFormat `json:"format" yaml:"format"`
}

// ToolsConfig holds paths and limits for external converter tools.
// Empty paths mean "resolve from PATH".
type ToolsConfig struct {
	// SofficePath is the LibreOffice binary used for pdf and txt
	// conversion.
	SofficePath string `json:"soffice_path" yaml:"soffice_path"`

	// PdftoppmPath is the Poppler binary used for png previews.
	PdftoppmPath string `json:"pdftoppm_path" yaml:"pdftoppm_path"`

	// Timeout bounds a single external tool invocation.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// CatalogConfig holds settings for the deck catalog.
type CatalogConfig struct {
	// CatalogDir is the directory holding the catalog database.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of search results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Inventory InventoryConfig `json:"inventory" yaml:"inventory"`
	Replace   ReplaceConfig   `json:"replace" yaml:"replace"`
	Tools     ToolsConfig     `json:"tools" yaml:"tools"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
}
