// Package models defines the data types shared between the analyzer core
// and the CLI/report layers.
package models

import "strings"

// Kind classifies a declared symbol.
type Kind string

const (
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindClass    Kind = "class"
	KindImport   Kind = "import"
	KindVariable Kind = "variable"
)

// Definition is a declared symbol with a qualified name and source location.
// References and Confidence are set once, during aggregation.
type Definition struct {
	Name       string `json:"name"` // dot-qualified: module[.Class...].symbol
	SimpleName string `json:"simple_name"`
	Kind       Kind   `json:"type"`
	File       string `json:"file"`
	Line       uint32 `json:"line"`
	Confidence int    `json:"confidence"` // 0-100
	References int    `json:"references"`

	// IsExported marks symbols implicitly considered used by a heuristic
	// (naming conventions, __all__ exports, package-initializer visibility).
	IsExported bool `json:"-"`

	// InInit marks symbols declared in a package __init__.py file.
	InInit bool `json:"-"`

	// BaseClasses holds base-class simple names, class kind only.
	BaseClasses []string `json:"-"`
}

// IsPrivate reports whether the symbol follows the single-underscore
// private naming convention (dunders excluded).
func (d *Definition) IsPrivate() bool {
	return strings.HasPrefix(d.SimpleName, "_") && !strings.HasPrefix(d.SimpleName, "__")
}

// IsDunder reports whether the simple name both starts and ends with
// double underscores.
func (d *Definition) IsDunder() bool {
	return strings.HasPrefix(d.SimpleName, "__") && strings.HasSuffix(d.SimpleName, "__")
}

// Reference is an observed name usage. References are append-only and
// never mutated; only the aggregate count per name matters.
type Reference struct {
	Name string
	File string
}
