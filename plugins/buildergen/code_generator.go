package buildergen

import (
	"fmt"
	"strings"

	"github.com/Yamashou/buildergen/codegen"
)

const (
	generatedHeader = "// Code generated by github.com/Yamashou/buildergen, DO NOT EDIT."
	runtimePkgPath  = "github.com/Yamashou/buildergen/builder"
	runtimePkgName  = "builder"
)

// CodeGenerator renders an assembled builder as a Go source file.
type CodeGenerator struct {
	formatter *CodeFormatter
}

// NewCodeGenerator creates a new CodeGenerator
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{
		formatter: NewCodeFormatter(),
	}
}

// Generate returns the unformatted source of the file holding gen.
func (g *CodeGenerator) Generate(gen *codegen.GeneratedType) string {
	imports := NewImports(gen.PkgPath)

	// the body registers the imports it needs, so it is rendered first
	body := g.emit(gen, imports)

	return g.formatter.FormatHeader(gen.PackageName, imports.String()) + body
}

func (g *CodeGenerator) emit(gen *codegen.GeneratedType, imports *Imports) string {
	var buf strings.Builder

	fields := make([]KeyedValue, 0, len(gen.Properties))
	for _, property := range gen.Properties {
		fields = append(fields, KeyedValue{Key: property.Name, Value: imports.LookupType(property.Type)})
	}
	buf.WriteString(g.formatter.FormatTypeDecl(gen.Name, gen.TargetName, fields))
	buf.WriteString(g.formatter.FormatConstructor(gen.Constructor, gen.Name))

	for _, setter := range gen.Setters {
		buf.WriteString(g.formatter.FormatSetter(
			gen.Name,
			gen.TargetName,
			setter.Name,
			setter.Param,
			imports.LookupType(setter.ParamType),
			setter.Property.Name,
			setter.Optional,
		))
	}

	buf.WriteString(g.formatter.FormatMethod(gen.Name, gen.Validator.Name, "", "error", g.validatorBody(gen, imports)))

	targetType := imports.LookupType(gen.Target)
	buf.WriteString(fmt.Sprintf("// %s validates the builder and returns a new %s.\n", gen.Build.Name, gen.TargetName))
	buf.WriteString(g.formatter.FormatMethod(gen.Name, gen.Build.Name, "", fmt.Sprintf("(*%s, error)", targetType), g.buildBody(gen, targetType, imports)))

	return buf.String()
}

// validatorBody collects every unset required property before failing, so one
// ValidationError names all of them in declaration order.
func (g *CodeGenerator) validatorBody(gen *codegen.GeneratedType, imports *Imports) []Statement {
	if len(gen.Validator.Required) == 0 {
		return []Statement{&ReturnStatement{Value: "nil"}}
	}

	statements := []Statement{&VariableDecl{Name: "missing", Type: "[]string"}}
	for _, property := range gen.Validator.Required {
		statements = append(statements, &IfStatement{
			Condition: fmt.Sprintf("b.%s == nil", property.Name),
			Body: []Statement{
				&Assignment{Target: "missing", Value: fmt.Sprintf("append(missing, %q)", property.Field.Name)},
			},
		})
	}

	runtime := imports.Lookup(runtimePkgPath, runtimePkgName)
	statements = append(statements,
		&IfStatement{
			Condition: "len(missing) > 0",
			Body: []Statement{
				&ReturnStatement{Value: fmt.Sprintf("&%s.ValidationError{Type: %q, Fields: missing}", runtime, gen.TargetName)},
			},
		},
		&ReturnStatement{Value: "nil"},
	)

	return statements
}

func (g *CodeGenerator) buildBody(gen *codegen.GeneratedType, targetType string, imports *Imports) []Statement {
	literal := &CompositeLiteral{Type: "&" + targetType}
	for _, assignment := range gen.Build.Assignments {
		value := "*b." + assignment.Property.Name
		if !assignment.Unwrap {
			value = fmt.Sprintf("%s.Value(b.%s)", imports.Lookup(runtimePkgPath, runtimePkgName), assignment.Property.Name)
		}
		literal.Elements = append(literal.Elements, KeyedValue{Key: assignment.Field, Value: value})
	}

	return []Statement{
		&ErrorCheckStatement{
			ErrorExpr: fmt.Sprintf("b.%s()", gen.Validator.Name),
			Body: []Statement{
				&ReturnStatement{Value: "nil, err"},
			},
		},
		&ReturnStatement{Value: literal.String(1) + ", nil"},
	}
}
