package codegen

import (
	"fmt"
	"strings"
)

// ShapeKind は TypeShape のバリアントを表す。
type ShapeKind string

const (
	Primitive ShapeKind = "Primitive"
	Array     ShapeKind = "Array"
	Pointer   ShapeKind = "Pointer"
	Map       ShapeKind = "Map"
	Declared  ShapeKind = "Declared"
)

// TypeShape is the host-agnostic description of a field type.
//
//   - Primitive: Name is the basic kind ("int", "bool", ...)
//   - Array:     Elem is the element, Len is -1 for slices
//   - Pointer:   Elem is the pointee
//   - Map:       Key and Elem
//   - Declared:  Name is the qualified name ("time.Time", "example.com/m.User"), Args are type arguments
type TypeShape struct {
	Kind ShapeKind
	Name string
	Len  int64
	Key  *TypeShape
	Elem *TypeShape
	Args []*TypeShape
}

func NewPrimitive(kind string) *TypeShape {
	return &TypeShape{Kind: Primitive, Name: kind}
}

func NewArray(elem *TypeShape) *TypeShape {
	return &TypeShape{Kind: Array, Len: -1, Elem: elem}
}

func NewFixedArray(length int64, elem *TypeShape) *TypeShape {
	return &TypeShape{Kind: Array, Len: length, Elem: elem}
}

func NewPointer(elem *TypeShape) *TypeShape {
	return &TypeShape{Kind: Pointer, Elem: elem}
}

func NewMap(key, elem *TypeShape) *TypeShape {
	return &TypeShape{Kind: Map, Key: key, Elem: elem}
}

func NewDeclared(qualifiedName string, args ...*TypeShape) *TypeShape {
	return &TypeShape{Kind: Declared, Name: qualifiedName, Args: args}
}

// IsPrimitive reports whether the shape is a bare primitive.
func (s *TypeShape) IsPrimitive() bool {
	return s != nil && s.Kind == Primitive
}

func (s *TypeShape) String() string {
	if s == nil {
		return "<nil>"
	}

	switch s.Kind {
	case Primitive:
		return s.Name
	case Array:
		if s.Len < 0 {
			return "[]" + s.Elem.String()
		}
		return fmt.Sprintf("[%d]%s", s.Len, s.Elem.String())
	case Pointer:
		return "*" + s.Elem.String()
	case Map:
		return fmt.Sprintf("map[%s]%s", s.Key.String(), s.Elem.String())
	case Declared:
		if len(s.Args) == 0 {
			return s.Name
		}
		args := make([]string, 0, len(s.Args))
		for _, arg := range s.Args {
			args = append(args, arg.String())
		}
		return fmt.Sprintf("%s[%s]", s.Name, strings.Join(args, ", "))
	}

	return fmt.Sprintf("<%s>", s.Kind)
}

// SplitQualifiedName splits "example.com/pkg.Name" into ("example.com/pkg", "Name").
// The package path may itself contain dots, so the split happens at the last dot
// after the last slash.
func SplitQualifiedName(qualifiedName string) (string, string) {
	slash := strings.LastIndex(qualifiedName, "/")
	dot := strings.LastIndex(qualifiedName[slash+1:], ".")
	if dot < 0 {
		return "", qualifiedName
	}
	dot += slash + 1

	return qualifiedName[:dot], qualifiedName[dot+1:]
}

// JoinQualifiedName is the inverse of SplitQualifiedName.
func JoinQualifiedName(pkgPath, name string) string {
	if pkgPath == "" {
		return name
	}

	return pkgPath + "." + name
}
