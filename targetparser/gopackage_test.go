package targetparser

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Yamashou/buildergen/codegen"
)

const modelSource = `package model

import "time"

// User is a user.
//
//buildergen:generate
type User struct {
	ID        int64
	Name      string
	Nickname  *string ` + "`builder:\"notnull\"`" + `
	Tags      []string
	Scores    [3]int
	Attrs     map[string]interface{}
	CreatedAt time.Time
	Friends   []*User
	Boxed     Box[string]
	cache     map[string]string ` + "`builder:\"-\"`" + `
	secret    string
}

//buildergen:generate
type Box[T any] struct {
	V T
}

//buildergen:generate
type Shape interface {
	Area() float64
}

//buildergen:generate
type Bad struct {
	C chan int
}

type Skipped struct {
	A int
}

//buildergen:generate
func NewUser() *User { return nil }

//buildergen:generate
var Default = User{}
`

func checkSource(t *testing.T, src string) (*token.FileSet, []*ast.File, *types.Package) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "model.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check("example.com/model", fset, []*ast.File{file}, nil)
	if err != nil {
		t.Fatalf("type check: %v", err)
	}

	return fset, []*ast.File{file}, pkg
}

func TestCollectTargets(t *testing.T) {
	t.Parallel()

	fset, files, pkg := checkSource(t, modelSource)

	user := &codegen.Target{
		Name:    "User",
		PkgPath: "example.com/model",
		Package: "model",
		Kind:    codegen.StructElement,
		Fields: []*codegen.FieldDescriptor{
			{Name: "ID", Type: codegen.NewPrimitive("int64")},
			{Name: "Name", Type: codegen.NewPrimitive("string")},
			{Name: "Nickname", Type: codegen.NewPointer(codegen.NewPrimitive("string")), Markers: []string{"notnull"}},
			{Name: "Tags", Type: codegen.NewArray(codegen.NewPrimitive("string"))},
			{Name: "Scores", Type: codegen.NewFixedArray(3, codegen.NewPrimitive("int"))},
			{Name: "Attrs", Type: codegen.NewMap(codegen.NewPrimitive("string"), codegen.NewDeclared("interface{}"))},
			{Name: "CreatedAt", Type: codegen.NewDeclared("time.Time")},
			{Name: "Friends", Type: codegen.NewArray(codegen.NewPointer(codegen.NewDeclared("example.com/model.User")))},
			{Name: "Boxed", Type: codegen.NewDeclared("example.com/model.Box", codegen.NewPrimitive("string"))},
			{Name: "secret", Type: codegen.NewPrimitive("string")},
		},
	}

	type want struct {
		targets []*codegen.Target
		errs    map[string]string
	}

	tests := []struct {
		name     string
		destPath string
		want     want
	}{
		{
			name:     "同じパッケージに出力する場合は非公開フィールドも対象になる",
			destPath: "example.com/model",
			want: want{
				targets: []*codegen.Target{
					user,
					{Name: "Box", PkgPath: "example.com/model", Package: "model", Kind: codegen.StructElement},
					{Name: "Shape", PkgPath: "example.com/model", Package: "model", Kind: codegen.InterfaceElement},
					{Name: "Bad", PkgPath: "example.com/model", Package: "model", Kind: codegen.StructElement},
					{Name: "NewUser", PkgPath: "example.com/model", Package: "model", Kind: codegen.FuncElement},
					{Name: "Default", PkgPath: "example.com/model", Package: "model", Kind: codegen.ValueElement},
				},
				errs: map[string]string{
					"Box": "generic types are not supported",
					"Bad": "field C: unsupported field type: chan int",
				},
			},
		},
		{
			name:     "別パッケージに出力する場合は非公開フィールドを持つ型はエラー",
			destPath: "example.com/gen",
			want: want{
				targets: []*codegen.Target{
					{Name: "User", PkgPath: "example.com/model", Package: "model", Kind: codegen.StructElement},
					{Name: "Box", PkgPath: "example.com/model", Package: "model", Kind: codegen.StructElement},
					{Name: "Shape", PkgPath: "example.com/model", Package: "model", Kind: codegen.InterfaceElement},
					{Name: "Bad", PkgPath: "example.com/model", Package: "model", Kind: codegen.StructElement},
					{Name: "NewUser", PkgPath: "example.com/model", Package: "model", Kind: codegen.FuncElement},
					{Name: "Default", PkgPath: "example.com/model", Package: "model", Kind: codegen.ValueElement},
				},
				errs: map[string]string{
					"User": "unexported field secret cannot be set from another package",
					"Box":  "generic types are not supported",
					"Bad":  "field C: unsupported field type: chan int",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := collectTargets(fset, files, pkg, tt.destPath)

			opts := cmpopts.IgnoreFields(codegen.Target{}, "Position", "Err")
			if diff := cmp.Diff(tt.want.targets, got, opts); diff != "" {
				t.Errorf("targets diff(-want +got): %s", diff)
			}

			for _, target := range got {
				wantErr := tt.want.errs[target.Name]
				var gotErr string
				if target.Err != nil {
					gotErr = target.Err.Error()
				}
				if gotErr != wantErr {
					t.Errorf("%s: error = %q, want %q", target.Name, gotErr, wantErr)
				}
				if target.Position == "" {
					t.Errorf("%s: position is empty", target.Name)
				}
			}
		})
	}
}

func TestMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  string
		want []string
	}{
		{name: "空", tag: "", want: nil},
		{name: "1 つ", tag: "notnull", want: []string{"notnull"}},
		{name: "複数と空白", tag: "notnull, other ,", want: []string{"notnull", "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, markers(tt.tag)); diff != "" {
				t.Errorf("markers diff(-want +got): %s", diff)
			}
		})
	}
}

func TestGoPackageLoader_Load(t *testing.T) {
	t.Parallel()

	const pkgPath = "github.com/Yamashou/buildergen/targetparser/testdata/model"

	loader := NewGoPackageLoader(".", pkgPath)
	got, err := loader.Load(context.Background(), []string{"./testdata/model"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []*codegen.Target{
		{
			Name:    "Article",
			PkgPath: pkgPath,
			Package: "model",
			Kind:    codegen.StructElement,
			Fields: []*codegen.FieldDescriptor{
				{Name: "ID", Type: codegen.NewPrimitive("string")},
				{Name: "Title", Type: codegen.NewPrimitive("string")},
				{Name: "Body", Type: codegen.NewPointer(codegen.NewPrimitive("string")), Markers: []string{"notnull"}},
				{Name: "Tags", Type: codegen.NewArray(codegen.NewPrimitive("string"))},
				{Name: "Published", Type: codegen.NewDeclared("time.Time")},
			},
		},
		{
			Name:    "Status",
			PkgPath: pkgPath,
			Package: "model",
			Kind:    codegen.OtherElement,
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(codegen.Target{}, "Position")); diff != "" {
		t.Errorf("Load() diff(-want +got): %s", diff)
	}
}

func TestGoPackageLoader_Load_brokenPackage(t *testing.T) {
	t.Parallel()

	const base = "github.com/Yamashou/buildergen/targetparser/testdata/"

	loader := NewGoPackageLoader(".", base+"model")
	got, err := loader.Load(context.Background(), []string{"./testdata/model", "./testdata/broken"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	type result struct {
		Target string
		Kind   codegen.ElementKind
		Failed bool
		Fields int
	}
	var results []result
	for _, target := range got {
		results = append(results, result{Target: target.QualifiedName(), Kind: target.Kind, Failed: target.Err != nil, Fields: len(target.Fields)})
	}

	// 型エラーのあるパッケージの対象だけが失敗し、他のパッケージは読み込まれる
	want := []result{
		{Target: base + "broken.Invoice", Kind: codegen.StructElement, Failed: true},
		{Target: base + "model.Article", Kind: codegen.StructElement, Fields: 5},
		{Target: base + "model.Status", Kind: codegen.OtherElement},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Fatalf("Load() diff(-want +got): %s", diff)
	}

	if msg := got[0].Err.Error(); !strings.Contains(msg, "package "+base+"broken") || !strings.Contains(msg, "Money") {
		t.Errorf("error = %q, want the package and the undefined type", msg)
	}
}
