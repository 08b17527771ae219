package codegen

import (
	"fmt"
	"go/token"
	gotypes "go/types"
	"maps"
	"path"
	"strings"
)

// NameTable maps qualified names of well known types to their idiomatic Go
// equivalent. Keys and values use the "import/path.Name" form; values without a
// package path refer to predeclared Go types.
type NameTable map[string]string

// DefaultNameTable returns a fresh copy of the built-in table.
func DefaultNameTable() NameTable {
	return maps.Clone(defaultNames)
}

// Merge returns a copy of t overridden by entries of other.
func (t NameTable) Merge(other map[string]string) NameTable {
	merged := maps.Clone(t)
	if merged == nil {
		merged = NameTable{}
	}
	maps.Copy(merged, other)

	return merged
}

var defaultNames = NameTable{
	// JVM / Kotlin descriptors
	"java.lang.String":         "string",
	"kotlin.String":            "string",
	"java.lang.Object":         "any",
	"kotlin.Any":               "any",
	"java.lang.CharSequence":   "string",
	"java.math.BigInteger":     "math/big.Int",
	"java.math.BigDecimal":     "math/big.Float",
	"java.time.Instant":        "time.Time",
	"java.time.OffsetDateTime": "time.Time",
	"java.time.ZonedDateTime":  "time.Time",
	"java.util.Date":           "time.Time",
	"java.time.Duration":       "time.Duration",
	"kotlin.time.Duration":     "time.Duration",
	"java.util.UUID":           "github.com/google/uuid.UUID",
	"java.net.URI":             "net/url.URL",
	"java.net.URL":             "net/url.URL",
	"java.util.regex.Pattern":  "regexp.Regexp",

	// GraphQL scalars
	"String": "string",
	"ID":     "string",
	"Time":   "time.Time",
	"Map":    "map[string]any",
	"Any":    "any",
	"Upload": "github.com/99designs/gqlgen/graphql.Upload",

	// deprecated Go spellings
	"interface{}":                      "any",
	"os.FileMode":                      "io/fs.FileMode",
	"os.FileInfo":                      "io/fs.FileInfo",
	"os.PathError":                     "io/fs.PathError",
	"golang.org/x/net/context.Context": "context.Context",
	"io/ioutil.NopCloser":              "io.NopCloser",
}

// TypeResolver turns TypeShapes into go/types types that can be printed back as Go
// source. Declared types are memoized per qualified name and arity, so repeated
// resolution of the same name yields the same *types.Named origin.
type TypeResolver struct {
	names    NameTable
	packages map[string]*gotypes.Package
	named    map[string]*gotypes.Named
}

// NewTypeResolver returns a resolver using names as its name table. A nil table
// disables canonicalization.
func NewTypeResolver(names NameTable) *TypeResolver {
	if names == nil {
		names = NameTable{}
	}

	return &TypeResolver{
		names:    names,
		packages: map[string]*gotypes.Package{},
		named:    map[string]*gotypes.Named{},
	}
}

// Canonical returns the canonical qualified name for qualifiedName, or
// qualifiedName itself when the table has no entry.
func (r *TypeResolver) Canonical(qualifiedName string) string {
	if canonical, ok := r.names[qualifiedName]; ok {
		return canonical
	}

	return qualifiedName
}

// Resolve returns the Go type for shape.
func (r *TypeResolver) Resolve(shape *TypeShape) (gotypes.Type, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: nil shape", ErrInvalidShape)
	}

	switch shape.Kind {
	case Primitive:
		return r.resolvePrimitive(shape.Name)
	case Array:
		if shape.Elem == nil {
			return nil, fmt.Errorf("%w: array without element", ErrInvalidShape)
		}
		elem, err := r.Resolve(shape.Elem)
		if err != nil {
			return nil, err
		}
		if shape.Len < 0 {
			return gotypes.NewSlice(elem), nil
		}
		return gotypes.NewArray(elem, shape.Len), nil
	case Pointer:
		if shape.Elem == nil {
			return nil, fmt.Errorf("%w: pointer without element", ErrInvalidShape)
		}
		elem, err := r.Resolve(shape.Elem)
		if err != nil {
			return nil, err
		}
		return gotypes.NewPointer(elem), nil
	case Map:
		if shape.Key == nil || shape.Elem == nil {
			return nil, fmt.Errorf("%w: map without key or element", ErrInvalidShape)
		}
		key, err := r.Resolve(shape.Key)
		if err != nil {
			return nil, err
		}
		elem, err := r.Resolve(shape.Elem)
		if err != nil {
			return nil, err
		}
		return gotypes.NewMap(key, elem), nil
	case Declared:
		return r.resolveDeclared(shape.Name, shape.Args)
	}

	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidShape, shape.Kind)
}

// Nullable returns the type a builder stores for shape: a pointer to the resolved
// type, so that nil means "unset". For primitives this is the boxed form.
func (r *TypeResolver) Nullable(shape *TypeShape) (gotypes.Type, error) {
	t, err := r.Resolve(shape)
	if err != nil {
		return nil, err
	}

	return gotypes.NewPointer(t), nil
}

func (r *TypeResolver) resolvePrimitive(kind string) (gotypes.Type, error) {
	obj, ok := gotypes.Universe.Lookup(kind).(*gotypes.TypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrimitive, kind)
	}
	if _, ok := obj.Type().(*gotypes.Basic); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrimitive, kind)
	}

	return obj.Type(), nil
}

func (r *TypeResolver) resolveDeclared(qualifiedName string, args []*TypeShape) (gotypes.Type, error) {
	canonical := r.Canonical(qualifiedName)

	// the table may map a name onto a composite spelling such as "map[string]any"
	if strings.ContainsAny(canonical, "[]*") {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: %s takes no type arguments", ErrInvalidShape, qualifiedName)
		}
		return r.resolveSpelling(canonical)
	}

	pkgPath, name := SplitQualifiedName(canonical)
	if !token.IsIdentifier(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTypeName, qualifiedName)
	}

	targs := make([]gotypes.Type, 0, len(args))
	for _, arg := range args {
		t, err := r.Resolve(arg)
		if err != nil {
			return nil, fmt.Errorf("type argument of %s: %w", qualifiedName, err)
		}
		targs = append(targs, t)
	}

	if pkgPath == "" {
		if obj, ok := gotypes.Universe.Lookup(name).(*gotypes.TypeName); ok {
			if len(targs) > 0 {
				return nil, fmt.Errorf("%w: %s takes no type arguments", ErrInvalidShape, name)
			}
			return obj.Type(), nil
		}
	}

	named := r.namedType(pkgPath, name, len(targs))
	if len(targs) == 0 {
		return named, nil
	}

	instance, err := gotypes.Instantiate(nil, named, targs, false)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", canonical, err)
	}

	return instance, nil
}

// resolveSpelling handles table values written as Go type expressions. Only the
// forms the default table uses are supported: []T, *T and map[K]V.
func (r *TypeResolver) resolveSpelling(spelling string) (gotypes.Type, error) {
	shape, err := parseSpelling(spelling)
	if err != nil {
		return nil, err
	}

	return r.Resolve(shape)
}

func parseSpelling(s string) (*TypeShape, error) {
	switch {
	case strings.HasPrefix(s, "[]"):
		elem, err := parseSpelling(s[2:])
		if err != nil {
			return nil, err
		}
		return NewArray(elem), nil
	case strings.HasPrefix(s, "*"):
		elem, err := parseSpelling(s[1:])
		if err != nil {
			return nil, err
		}
		return NewPointer(elem), nil
	case strings.HasPrefix(s, "map["):
		depth := 0
		for i := len("map"); i < len(s); i++ {
			switch s[i] {
			case '[':
				depth++
			case ']':
				depth--
			}
			if depth == 0 {
				key, err := parseSpelling(s[len("map["):i])
				if err != nil {
					return nil, err
				}
				elem, err := parseSpelling(s[i+1:])
				if err != nil {
					return nil, err
				}
				return NewMap(key, elem), nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrInvalidTypeName, s)
	}

	if obj, ok := gotypes.Universe.Lookup(s).(*gotypes.TypeName); ok {
		if _, basic := obj.Type().(*gotypes.Basic); basic {
			return NewPrimitive(s), nil
		}
	}

	return NewDeclared(s), nil
}

func (r *TypeResolver) namedType(pkgPath, name string, arity int) *gotypes.Named {
	key := fmt.Sprintf("%s#%d", JoinQualifiedName(pkgPath, name), arity)
	if named, ok := r.named[key]; ok {
		return named
	}

	var pkg *gotypes.Package
	if pkgPath != "" {
		pkg = r.pkg(pkgPath)
	}

	// the underlying type is never emitted, an empty struct keeps go/types happy
	named := gotypes.NewNamed(gotypes.NewTypeName(token.NoPos, pkg, name, nil), gotypes.NewStruct(nil, nil), nil)
	if arity > 0 {
		tparams := make([]*gotypes.TypeParam, 0, arity)
		for i := range arity {
			tname := gotypes.NewTypeName(token.NoPos, pkg, fmt.Sprintf("T%d", i), nil)
			tparams = append(tparams, gotypes.NewTypeParam(tname, gotypes.NewInterfaceType(nil, nil).Complete()))
		}
		named.SetTypeParams(tparams)
	}
	r.named[key] = named

	return named
}

// DeclarePackage records the real name of the package at pkgPath. Without it the
// name is guessed from the path. It has no effect once pkgPath was used.
func (r *TypeResolver) DeclarePackage(pkgPath, name string) {
	if pkgPath == "" || name == "" {
		return
	}
	if _, ok := r.packages[pkgPath]; ok {
		return
	}

	r.packages[pkgPath] = gotypes.NewPackage(pkgPath, name)
}

func (r *TypeResolver) pkg(pkgPath string) *gotypes.Package {
	if pkg, ok := r.packages[pkgPath]; ok {
		return pkg
	}

	pkg := gotypes.NewPackage(pkgPath, PackageNameForPath(pkgPath))
	r.packages[pkgPath] = pkg

	return pkg
}

// PackageNameForPath guesses the package name declared at pkgPath following the
// usual conventions: last element, major version suffixes skipped, "go-" prefixes
// and ".vN" / "-xxx" suffixes dropped.
func PackageNameForPath(pkgPath string) string {
	name := path.Base(pkgPath)
	if isMajorVersion(name) {
		name = path.Base(path.Dir(pkgPath))
	}
	name = strings.TrimPrefix(name, "go-")
	if i := strings.IndexAny(name, ".-"); i > 0 {
		name = name[:i]
	}

	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
