package buildergen

import (
	"fmt"
	gotypes "go/types"
	"path"
	"slices"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/Yamashou/buildergen/codegen"
)

// Import is one entry of the generated import block.
type Import struct {
	Name  string
	Path  string
	Alias string
}

// Imports tracks the packages a generated file refers to and hands out the
// qualifier to use for each of them. References to the destination package are
// left unqualified.
type Imports struct {
	destPath string
	imports  []*Import
}

// NewImports creates an import tracker for a file in package destPath.
func NewImports(destPath string) *Imports {
	return &Imports{destPath: destPath}
}

// Lookup returns the qualifier for pkgPath, registering the import on first use.
// name is the declared package name; an empty name is guessed from the path.
func (s *Imports) Lookup(pkgPath, name string) string {
	if pkgPath == "" || pkgPath == s.destPath {
		return ""
	}

	if existing := s.findByPath(pkgPath); existing != nil {
		return existing.Alias
	}

	if name == "" {
		name = codegen.PackageNameForPath(pkgPath)
	}

	imp := &Import{Name: name, Path: pkgPath, Alias: name}
	for i := 1; s.findByAlias(imp.Alias) != nil; i++ {
		imp.Alias = fmt.Sprintf("%s%d", name, i)
	}
	s.imports = append(s.imports, imp)

	return imp.Alias
}

// LookupType renders t as Go source, qualifying named types through Lookup.
func (s *Imports) LookupType(t gotypes.Type) string {
	return gotypes.TypeString(t, func(pkg *gotypes.Package) string {
		return s.Lookup(pkg.Path(), pkg.Name())
	})
}

// String renders the import declaration. Standard library packages come first,
// separated from the rest by a blank line, both groups sorted by path.
func (s *Imports) String() string {
	if len(s.imports) == 0 {
		return ""
	}

	var std, other []string
	for _, imp := range slices.SortedFunc(slices.Values(s.imports), func(a, b *Import) int {
		return strings.Compare(a.Path, b.Path)
	}) {
		line := fmt.Sprintf("%q", imp.Path)
		if imp.Alias != path.Base(imp.Path) {
			line = imp.Alias + " " + line
		}
		if isStdlib(imp.Path) {
			std = append(std, line)
		} else {
			other = append(other, line)
		}
	}

	var buf strings.Builder
	buf.WriteString("import (\n")
	for _, line := range std {
		buf.WriteString("\t" + line + "\n")
	}
	if len(std) > 0 && len(other) > 0 {
		buf.WriteString("\n")
	}
	for _, line := range other {
		buf.WriteString("\t" + line + "\n")
	}
	buf.WriteString(")\n")

	return buf.String()
}

func (s *Imports) findByPath(pkgPath string) *Import {
	for _, imp := range s.imports {
		if imp.Path == pkgPath {
			return imp
		}
	}
	return nil
}

func (s *Imports) findByAlias(alias string) *Import {
	for _, imp := range s.imports {
		if imp.Alias == alias {
			return imp
		}
	}
	return nil
}

func isStdlib(pkgPath string) bool {
	first, _, _ := strings.Cut(pkgPath, "/")
	return !strings.Contains(first, ".")
}

// formatSource runs goimports over src as if it lived at filename.
func formatSource(filename string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, src, nil)
	if err != nil {
		return nil, fmt.Errorf("go imports: %w", err)
	}

	return formatted, nil
}
