package codegen

import (
	"fmt"
	"go/token"
	gotypes "go/types"

	"github.com/99designs/gqlgen/codegen/templates"
)

const (
	buildMethodName    = "Build"
	validateMethodName = "validate"
	setterParamName    = "v"
)

// BuilderModel is the input of the assembler: one target with classified fields
// and the package the builder is emitted into.
type BuilderModel struct {
	Target      *Target
	Fields      []*FieldDescriptor
	PackageName string
	PkgPath     string
}

// GeneratedType is the assembled structure of a builder, ready for rendering.
type GeneratedType struct {
	Name        string
	Constructor string
	PackageName string
	PkgPath     string
	TargetName  string
	Target      gotypes.Type
	Properties  []*Property
	Setters     []*Setter
	Validator   *Validator
	Build       *BuildOperation
}

// Property is a private builder field holding the value of one target field.
// Its type is always a pointer; nil means unset.
type Property struct {
	Name  string
	Type  gotypes.Type
	Field *FieldDescriptor
}

// Setter stores one value and returns the builder.
type Setter struct {
	Name      string
	Param     string
	ParamType gotypes.Type
	Optional  bool
	Property  *Property
}

// Validator checks every required property, in declaration order.
type Validator struct {
	Name     string
	Required []*Property
}

// BuildOperation validates, then constructs the target with one keyed element per
// field in declaration order.
type BuildOperation struct {
	Name        string
	Assignments []*Assignment
}

// Assignment sets target field Field from Property. Unwrap is true for required
// fields, whose presence the validator has just proven.
type Assignment struct {
	Field    string
	Property *Property
	Unwrap   bool
}

// Assembler builds GeneratedType values from BuilderModels.
type Assembler struct {
	resolver *TypeResolver
}

func NewAssembler(resolver *TypeResolver) *Assembler {
	return &Assembler{resolver: resolver}
}

// Assemble produces the builder structure for model. Field order of the result
// matches model.Fields. Errors come from type resolution or from names the
// generated code cannot declare.
func (a *Assembler) Assemble(model *BuilderModel) (*GeneratedType, error) {
	target := model.Target
	targetType, err := a.resolver.Resolve(NewDeclared(target.QualifiedName()))
	if err != nil {
		return nil, &ElementShapeError{Target: target.QualifiedName(), Reason: "cannot resolve target type", Err: err}
	}

	generated := &GeneratedType{
		Name:        target.BuilderName(),
		Constructor: constructorName(target.BuilderName()),
		PackageName: model.PackageName,
		PkgPath:     model.PkgPath,
		TargetName:  target.Name,
		Target:      targetType,
		Properties:  make([]*Property, 0, len(model.Fields)),
		Setters:     make([]*Setter, 0, len(model.Fields)),
		Validator:   &Validator{Name: validateMethodName},
		Build:       &BuildOperation{Name: buildMethodName},
	}

	seen := make(map[string]string, len(model.Fields))
	for _, field := range model.Fields {
		name, err := propertyName(field.Name, seen)
		if err != nil {
			return nil, &ElementShapeError{Target: target.QualifiedName(), Reason: err.Error()}
		}

		storage, err := a.resolver.Nullable(field.Type)
		if err != nil {
			return nil, &ElementShapeError{Target: target.QualifiedName(), Reason: fmt.Sprintf("field %s", field.Name), Err: err}
		}

		property := &Property{
			Name:  name,
			Type:  storage,
			Field: field,
		}
		generated.Properties = append(generated.Properties, property)

		setter := &Setter{
			Name:      field.Name,
			Param:     setterParamName,
			ParamType: storage.(*gotypes.Pointer).Elem(), //nolint:forcetypeassert // Nullable always returns a pointer
			Optional:  !field.Required,
			Property:  property,
		}
		if setter.Optional {
			setter.ParamType = storage
		}
		generated.Setters = append(generated.Setters, setter)

		if field.Required {
			generated.Validator.Required = append(generated.Validator.Required, property)
		}

		generated.Build.Assignments = append(generated.Build.Assignments, &Assignment{
			Field:    field.Name,
			Property: property,
			Unwrap:   field.Required,
		})
	}

	return generated, nil
}

// propertyName returns the builder field name for a target field. It rejects names
// that would clash with the builder's own methods or with the members of another
// field.
func propertyName(name string, seen map[string]string) (string, error) {
	if !token.IsIdentifier(name) {
		return "", fmt.Errorf("field name %q is not an identifier", name)
	}
	if name == buildMethodName || name == validateMethodName {
		return "", fmt.Errorf("field %s clashes with a builder method", name)
	}

	private := templates.ToGoPrivate(name)
	// unexported fields would otherwise share their name with the setter
	if private == name || private == validateMethodName {
		private += "Value"
	}
	for _, member := range []string{name, private} {
		if other, ok := seen[member]; ok {
			return "", fmt.Errorf("fields %s and %s both need the builder member %s", other, name, member)
		}
	}
	seen[name] = name
	seen[private] = name

	return private, nil
}

func constructorName(builderName string) string {
	if token.IsExported(builderName) {
		return "New" + builderName
	}

	return "new" + templates.UcFirst(builderName)
}
