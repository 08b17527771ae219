// Package targetparser は生成対象の型を見つけ、codegen.Target に変換する。
//
// 対応するホストは以下の 2 つ:
//   - Go パッケージ: ドキュメントコメントに //buildergen:generate を持つ型
//   - GraphQL スキーマ: gqlgen が生成するモデルの object / input object 型
package targetparser

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/Yamashou/buildergen/codegen"
)

const (
	// Directive marks a declaration for builder generation. It must be a line of
	// the declaration's doc comment.
	Directive = "//buildergen:generate"
	// TagKey is the struct tag key holding field markers. The value "-" skips
	// the field.
	TagKey = "builder"
)

var errUnsupportedType = errors.New("unsupported field type")

// GoPackageLoader は Go パッケージから生成対象を読み込む。
type GoPackageLoader struct {
	dir      string
	destPath string
}

// NewGoPackageLoader creates a loader resolving patterns relative to dir. destPath
// is the import path the builders are written to; unexported fields can only be
// set from the same package.
func NewGoPackageLoader(dir, destPath string) *GoPackageLoader {
	return &GoPackageLoader{dir: dir, destPath: destPath}
}

// Load returns the annotated elements of the packages matching patterns, in
// package path, file and declaration order.
func (l *GoPackageLoader) Load(ctx context.Context, patterns []string) ([]*codegen.Target, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     l.dir,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	slices.SortFunc(pkgs, func(a, b *packages.Package) int {
		return strings.Compare(a.PkgPath, b.PkgPath)
	})

	var targets []*codegen.Target
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			targets = append(targets, brokenTargets(pkg, l.destPath)...)
			continue
		}
		targets = append(targets, collectTargets(pkg.Fset, pkg.Syntax, pkg.Types, l.destPath)...)
	}

	return targets, nil
}

// brokenTargets reports the annotated elements of a package that failed to load
// as failed targets, so the other packages still get their builders. A package
// without any readable element is reported as a single target named after it.
func brokenTargets(pkg *packages.Package, destPath string) []*codegen.Target {
	err := fmt.Errorf("package %s: %w", pkg.PkgPath, pkg.Errors[0])

	var targets []*codegen.Target
	if pkg.Types != nil && pkg.Fset != nil {
		targets = collectTargets(pkg.Fset, pkg.Syntax, pkg.Types, destPath)
	}
	for _, target := range targets {
		target.Fields = nil
		target.Err = err
	}

	if len(targets) == 0 {
		name := pkg.Name
		if name == "" {
			name = pkg.ID
		}
		targets = append(targets, &codegen.Target{
			Name:     name,
			PkgPath:  pkg.PkgPath,
			Package:  pkg.Name,
			Kind:     codegen.OtherElement,
			Position: pkg.Errors[0].Pos,
			Err:      err,
		})
	}

	return targets
}

// collectTargets walks the declarations of files and describes every one carrying
// the directive.
func collectTargets(fset *token.FileSet, files []*ast.File, pkg *types.Package, destPath string) []*codegen.Target {
	var targets []*codegen.Target
	for _, file := range files {
		for _, decl := range file.Decls {
			switch decl := decl.(type) {
			case *ast.GenDecl:
				for _, spec := range decl.Specs {
					doc := specDoc(decl, spec)
					if !hasDirective(doc) {
						continue
					}
					for _, name := range specNames(spec) {
						target := newTarget(fset, pkg, name)
						if ts, ok := spec.(*ast.TypeSpec); ok {
							describeType(target, pkg, ts, destPath)
						} else {
							target.Kind = codegen.ValueElement
						}
						targets = append(targets, target)
					}
				}
			case *ast.FuncDecl:
				if !hasDirective(decl.Doc) {
					continue
				}
				target := newTarget(fset, pkg, decl.Name)
				target.Kind = codegen.FuncElement
				targets = append(targets, target)
			}
		}
	}

	return targets
}

func newTarget(fset *token.FileSet, pkg *types.Package, name *ast.Ident) *codegen.Target {
	return &codegen.Target{
		Name:     name.Name,
		PkgPath:  pkg.Path(),
		Package:  pkg.Name(),
		Position: fset.Position(name.Pos()).String(),
	}
}

// describeType fills Kind and Fields of target from the type checker's view of ts.
func describeType(target *codegen.Target, pkg *types.Package, ts *ast.TypeSpec, destPath string) {
	obj, ok := pkg.Scope().Lookup(ts.Name.Name).(*types.TypeName)
	if !ok {
		target.Kind = codegen.OtherElement
		target.Err = fmt.Errorf("%s is not a type", ts.Name.Name)
		return
	}

	switch u := obj.Type().Underlying().(type) {
	case *types.Struct:
		target.Kind = codegen.StructElement
		if named, ok := obj.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
			target.Err = errors.New("generic types are not supported")
			return
		}
		fields, err := describeFields(u, pkg.Path() == destPath)
		if err != nil {
			target.Err = err
			return
		}
		target.Fields = fields
	case *types.Interface:
		target.Kind = codegen.InterfaceElement
	case *types.Signature:
		target.Kind = codegen.FuncElement
	default:
		target.Kind = codegen.OtherElement
	}
}

func describeFields(st *types.Struct, samePackage bool) ([]*codegen.FieldDescriptor, error) {
	fields := make([]*codegen.FieldDescriptor, 0, st.NumFields())
	for i := range st.NumFields() {
		v := st.Field(i)
		tag, _ := reflect.StructTag(st.Tag(i)).Lookup(TagKey)
		if tag == "-" {
			continue
		}
		if !v.Exported() && !samePackage {
			return nil, fmt.Errorf("unexported field %s cannot be set from another package", v.Name())
		}

		shape, err := shapeOf(v.Type())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", v.Name(), err)
		}

		fields = append(fields, &codegen.FieldDescriptor{
			Name:    v.Name(),
			Type:    shape,
			Markers: markers(tag),
		})
	}

	return fields, nil
}

// shapeOf translates a go/types type into a TypeShape.
func shapeOf(t types.Type) (*codegen.TypeShape, error) {
	switch t := t.(type) {
	case *types.Basic:
		if t.Kind() == types.UnsafePointer || t.Info()&types.IsUntyped != 0 {
			return nil, fmt.Errorf("%w: %s", errUnsupportedType, t)
		}
		return codegen.NewPrimitive(t.Name()), nil
	case *types.Slice:
		elem, err := shapeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return codegen.NewArray(elem), nil
	case *types.Array:
		elem, err := shapeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return codegen.NewFixedArray(t.Len(), elem), nil
	case *types.Pointer:
		elem, err := shapeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return codegen.NewPointer(elem), nil
	case *types.Map:
		key, err := shapeOf(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := shapeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return codegen.NewMap(key, elem), nil
	case *types.Alias:
		return declaredShape(t.Obj(), t.TypeArgs())
	case *types.Named:
		return declaredShape(t.Obj(), t.TypeArgs())
	case *types.Interface:
		if t.Empty() {
			return codegen.NewDeclared("interface{}"), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", errUnsupportedType, t)
}

func declaredShape(obj *types.TypeName, targs *types.TypeList) (*codegen.TypeShape, error) {
	var pkgPath string
	if obj.Pkg() != nil {
		pkgPath = obj.Pkg().Path()
	}

	// Declared without arguments is a non-generic type
	var args []*codegen.TypeShape
	for i := range targs.Len() {
		arg, err := shapeOf(targs.At(i))
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	return codegen.NewDeclared(codegen.JoinQualifiedName(pkgPath, obj.Name()), args...), nil
}

func specDoc(decl *ast.GenDecl, spec ast.Spec) *ast.CommentGroup {
	var doc *ast.CommentGroup
	switch spec := spec.(type) {
	case *ast.TypeSpec:
		doc = spec.Doc
	case *ast.ValueSpec:
		doc = spec.Doc
	}
	// ungrouped declarations keep their comment on the GenDecl
	if doc == nil && !decl.Lparen.IsValid() {
		doc = decl.Doc
	}

	return doc
}

func specNames(spec ast.Spec) []*ast.Ident {
	switch spec := spec.(type) {
	case *ast.TypeSpec:
		return []*ast.Ident{spec.Name}
	case *ast.ValueSpec:
		return spec.Names
	}

	return nil
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}

	return slices.ContainsFunc(doc.List, func(c *ast.Comment) bool {
		return strings.TrimSpace(c.Text) == Directive
	})
}

func markers(tag string) []string {
	var ms []string
	for m := range strings.SplitSeq(tag, ",") {
		if m = strings.TrimSpace(m); m != "" {
			ms = append(ms, m)
		}
	}

	return ms
}
