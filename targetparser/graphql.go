package targetparser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/99designs/gqlgen/codegen/templates"

	"github.com/Yamashou/buildergen/codegen"
)

// scalars whose Go type comes from the name table rather than the model package
var tableScalars = []string{"String", "ID", "Time", "Map", "Any", "Upload"}

// GraphQLLoader は GraphQL スキーマから gqlgen のモデル型を生成対象として読み込む。
//
// フィールドの型は gqlgen の modelgen と同じ規則で Go の型に対応させる:
//   - object / input object は常にポインタ
//   - nullable な scalar / enum はポインタ
//   - list はスライス
//
// 非 null（!）のフィールドには marker が付く。
type GraphQLLoader struct {
	fs         afero.Fs
	modelPath  string
	modelName  string
	marker     string
	schema     *ast.Schema
	operations []string
}

// NewGraphQLLoader creates a loader for models generated into the package
// modelPath named modelName.
func NewGraphQLLoader(fs afero.Fs, modelPath, modelName, marker string) *GraphQLLoader {
	if marker == "" {
		marker = codegen.NotNullMarker
	}

	return &GraphQLLoader{
		fs:        fs,
		modelPath: modelPath,
		modelName: modelName,
		marker:    marker,
	}
}

// Load parses files and returns one target per requested type. An empty names
// list selects every object and input object except the operation root types,
// sorted by name.
func (l *GraphQLLoader) Load(files, names []string) ([]*codegen.Target, error) {
	sources := make([]*ast.Source, 0, len(files))
	for _, filename := range files {
		content, err := afero.ReadFile(l.fs, filename)
		if err != nil {
			return nil, fmt.Errorf("unable to open schema: %w", err)
		}
		sources = append(sources, &ast.Source{Name: filename, Input: string(content)})
	}

	schema, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	l.schema = schema
	l.operations = nil
	for _, root := range []*ast.Definition{schema.Query, schema.Mutation, schema.Subscription} {
		if root != nil {
			l.operations = append(l.operations, root.Name)
		}
	}

	if len(names) == 0 {
		for name, def := range schema.Types {
			if def.BuiltIn || slices.Contains(l.operations, name) {
				continue
			}
			if def.Kind == ast.Object || def.Kind == ast.InputObject {
				names = append(names, name)
			}
		}
		slices.Sort(names)
	}

	targets := make([]*codegen.Target, 0, len(names))
	for _, name := range names {
		targets = append(targets, l.target(name))
	}

	return targets, nil
}

func (l *GraphQLLoader) target(name string) *codegen.Target {
	target := &codegen.Target{
		Name:    templates.ToGo(name),
		PkgPath: l.modelPath,
		Package: l.modelName,
	}

	def, ok := l.schema.Types[name]
	if !ok {
		target.Kind = codegen.OtherElement
		target.Err = fmt.Errorf("type %s is not defined in the schema", name)
		return target
	}
	if def.Position != nil && def.Position.Src != nil {
		target.Position = fmt.Sprintf("%s:%d:%d", def.Position.Src.Name, def.Position.Line, def.Position.Column)
	}

	switch def.Kind {
	case ast.Object, ast.InputObject:
		target.Kind = codegen.StructElement
	case ast.Interface, ast.Union:
		target.Kind = codegen.InterfaceElement
		return target
	default:
		target.Kind = codegen.ValueElement
		return target
	}

	for _, field := range def.Fields {
		// introspection fields such as __schema on the query type
		if strings.HasPrefix(field.Name, "__") {
			continue
		}
		shape, err := l.shapeOf(field.Type)
		if err != nil {
			target.Err = fmt.Errorf("field %s: %w", field.Name, err)
			return target
		}
		descriptor := &codegen.FieldDescriptor{
			Name: templates.ToGo(field.Name),
			Type: shape,
		}
		if field.Type.NonNull {
			descriptor.Markers = []string{l.marker}
		}
		target.Fields = append(target.Fields, descriptor)
	}

	return target
}

func (l *GraphQLLoader) shapeOf(t *ast.Type) (*codegen.TypeShape, error) {
	if t.Elem != nil {
		elem, err := l.shapeOf(t.Elem)
		if err != nil {
			return nil, err
		}
		return codegen.NewArray(elem), nil
	}

	def, ok := l.schema.Types[t.NamedType]
	if !ok {
		return nil, fmt.Errorf("unknown type %s", t.NamedType)
	}

	var shape *codegen.TypeShape
	switch def.Kind {
	case ast.Object, ast.InputObject:
		return codegen.NewPointer(l.model(def.Name)), nil
	case ast.Interface, ast.Union:
		return l.model(def.Name), nil
	case ast.Enum:
		shape = l.model(def.Name)
	case ast.Scalar:
		switch def.Name {
		case "Int":
			shape = codegen.NewPrimitive("int")
		case "Float":
			shape = codegen.NewPrimitive("float64")
		case "Boolean":
			shape = codegen.NewPrimitive("bool")
		default:
			if slices.Contains(tableScalars, def.Name) {
				shape = codegen.NewDeclared(def.Name)
			} else {
				shape = l.model(def.Name)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported kind %s of %s", def.Kind, def.Name)
	}

	if !t.NonNull {
		return codegen.NewPointer(shape), nil
	}

	return shape, nil
}

func (l *GraphQLLoader) model(name string) *codegen.TypeShape {
	return codegen.NewDeclared(codegen.JoinQualifiedName(l.modelPath, templates.ToGo(name)))
}
