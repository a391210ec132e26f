// Package manifest writes the `.sushilib` JSON manifest of §6 for library
// builds. The wire-format shape follows the teacher's JSON-RPC message
// marshaling in internal/lsp/server.go (plain structs with `json` tags,
// marshaled wholesale), swapping stdlib `encoding/json` for
// `github.com/goccy/go-json` — a drop-in-compatible replacement already
// adopted elsewhere in the pack (manifest entries such as
// other_examples/manifests/jinterlante1206-AleutianLocal/go.mod) for
// exactly this kind of struct-to-JSON artifact writing.
package manifest

import (
	"os"
	"runtime"

	"github.com/goccy/go-json"
)

// Manifest is the `.sushilib` schema of §6.
type Manifest struct {
	SushiLibVersion string             `json:"sushi_lib_version"`
	LibraryName     string             `json:"library_name"`
	CompiledAt      string             `json:"compiled_at"` // ISO-8601 UTC
	Platform        string             `json:"platform"`    // darwin|linux|unknown
	CompilerVersion string             `json:"compiler_version"`
	PublicFunctions []FunctionDescriptor `json:"public_functions"`
	PublicConstants []ConstantDescriptor `json:"public_constants"`
	Structs         []StructDescriptor   `json:"structs"`
	Enums           []EnumDescriptor     `json:"enums"`
	Dependencies    []string             `json:"dependencies"`
}

// FunctionDescriptor describes one exported function.
type FunctionDescriptor struct {
	Name       string              `json:"name"`
	Params     []ParamDescriptor   `json:"params"`
	ReturnType string              `json:"return_type"`
	IsGeneric  bool                `json:"is_generic"`
	TypeParams []string            `json:"type_params"`
}

// ParamDescriptor describes one function parameter.
type ParamDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ConstantDescriptor describes one exported module-level constant.
type ConstantDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// StructDescriptor describes one exported struct's field shape.
type StructDescriptor struct {
	Name   string            `json:"name"`
	Fields []ParamDescriptor `json:"fields"`
}

// EnumDescriptor describes one exported enum's variant shape.
type EnumDescriptor struct {
	Name     string             `json:"name"`
	Variants []VariantDescriptor `json:"variants"`
}

// VariantDescriptor describes one enum variant. DataType is nil for a
// variant with no associated data.
type VariantDescriptor struct {
	Name     string  `json:"name"`
	HasData  bool    `json:"has_data"`
	DataType *string `json:"data_type"`
}

// Platform returns the platform tag for the `platform` field, matching
// the set §6 names (darwin|linux|unknown).
func Platform() string {
	switch runtime.GOOS {
	case "darwin":
		return "darwin"
	case "linux":
		return "linux"
	default:
		return "unknown"
	}
}

// Write marshals m as indented JSON and writes it to path.
func Write(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
