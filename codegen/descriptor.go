package codegen

import "slices"

// NotNullMarker is the default marker vocabulary entry. See NullabilityClassifier for
// how its presence is interpreted.
const NotNullMarker = "notnull"

// FieldDescriptor is the extracted metadata of one member of a target type.
type FieldDescriptor struct {
	Name     string
	Type     *TypeShape
	Markers  []string
	Required bool
}

// HasMarker reports whether the field carries the given marker.
func (f *FieldDescriptor) HasMarker(marker string) bool {
	return slices.Contains(f.Markers, marker)
}

// ElementKind is the kind of an annotated element found by a host.
type ElementKind string

const (
	StructElement    ElementKind = "struct"
	InterfaceElement ElementKind = "interface"
	FuncElement      ElementKind = "func"
	ValueElement     ElementKind = "value"
	OtherElement     ElementKind = "other"
)

// Target is one annotated element supplied by a host for a processing round.
type Target struct {
	// Name is the unqualified type name, e.g. "User"
	Name string
	// PkgPath is the import path of the declaring package
	PkgPath string
	// Package is the package name of the declaring package
	Package string
	// Kind must be StructElement for a builder to be generated
	Kind ElementKind
	// Position is a human readable source location used in diagnostics
	Position string
	// Fields in declaration order
	Fields []*FieldDescriptor
	// Err is set by the host when the element could not be described
	Err error
}

// QualifiedName returns "pkgpath.Name".
func (t *Target) QualifiedName() string {
	return JoinQualifiedName(t.PkgPath, t.Name)
}

// BuilderName returns the name of the generated builder type.
func (t *Target) BuilderName() string {
	return t.Name + "Builder"
}
