package targetparser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"

	"github.com/Yamashou/buildergen/codegen"
)

const schemaSource = `scalar Time
scalar Money

type Query {
  user(id: ID!): User
}

enum Role {
  ADMIN
  MEMBER
}

interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  name: String!
  nickname: String
  age: Int
  score: Float!
  active: Boolean!
  role: Role!
  previousRole: Role
  tags: [String!]!
  aliases: [String]
  friends: [User!]
  manager: User
  createdAt: Time!
  balance: Money
}

input CreateUserInput {
  name: String!
  role: Role
}
`

const modelPath = "example.com/app/graph/model"

func newSchemaFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "schema/schema.graphqls", []byte(schemaSource), 0o644); err != nil {
		t.Fatal(err)
	}

	return fs
}

func TestGraphQLLoader_Load(t *testing.T) {
	t.Parallel()

	model := func(name string) *codegen.TypeShape {
		return codegen.NewDeclared(modelPath + "." + name)
	}
	notnull := []string{codegen.NotNullMarker}

	user := &codegen.Target{
		Name:    "User",
		PkgPath: modelPath,
		Package: "model",
		Kind:    codegen.StructElement,
		Fields: []*codegen.FieldDescriptor{
			{Name: "ID", Type: codegen.NewDeclared("ID"), Markers: notnull},
			{Name: "Name", Type: codegen.NewDeclared("String"), Markers: notnull},
			{Name: "Nickname", Type: codegen.NewPointer(codegen.NewDeclared("String"))},
			{Name: "Age", Type: codegen.NewPointer(codegen.NewPrimitive("int"))},
			{Name: "Score", Type: codegen.NewPrimitive("float64"), Markers: notnull},
			{Name: "Active", Type: codegen.NewPrimitive("bool"), Markers: notnull},
			{Name: "Role", Type: model("Role"), Markers: notnull},
			{Name: "PreviousRole", Type: codegen.NewPointer(model("Role"))},
			{Name: "Tags", Type: codegen.NewArray(codegen.NewDeclared("String")), Markers: notnull},
			{Name: "Aliases", Type: codegen.NewArray(codegen.NewPointer(codegen.NewDeclared("String")))},
			{Name: "Friends", Type: codegen.NewArray(codegen.NewPointer(model("User")))},
			{Name: "Manager", Type: codegen.NewPointer(model("User"))},
			{Name: "CreatedAt", Type: codegen.NewDeclared("Time"), Markers: notnull},
			{Name: "Balance", Type: codegen.NewPointer(model("Money"))},
		},
	}
	input := &codegen.Target{
		Name:    "CreateUserInput",
		PkgPath: modelPath,
		Package: "model",
		Kind:    codegen.StructElement,
		Fields: []*codegen.FieldDescriptor{
			{Name: "Name", Type: codegen.NewDeclared("String"), Markers: notnull},
			{Name: "Role", Type: codegen.NewPointer(model("Role"))},
		},
	}

	type args struct {
		names []string
	}

	type want struct {
		targets []*codegen.Target
		errs    map[string]string
	}

	tests := []struct {
		name string
		args args
		want want
	}{
		{
			name: "型を指定しない場合はobjectとinputを名前順ですべて返す",
			args: args{},
			want: want{
				targets: []*codegen.Target{input, user},
			},
		},
		{
			name: "指定した順で返し、構造体にならない型はそのKindで返す",
			args: args{
				names: []string{"User", "Role", "Node", "Missing"},
			},
			want: want{
				targets: []*codegen.Target{
					user,
					{Name: "Role", PkgPath: modelPath, Package: "model", Kind: codegen.ValueElement},
					{Name: "Node", PkgPath: modelPath, Package: "model", Kind: codegen.InterfaceElement},
					{Name: "Missing", PkgPath: modelPath, Package: "model", Kind: codegen.OtherElement},
				},
				errs: map[string]string{
					"Missing": "type Missing is not defined in the schema",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader := NewGraphQLLoader(newSchemaFs(t), modelPath, "model", "")
			got, err := loader.Load([]string{"schema/schema.graphqls"}, tt.args.names)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			opts := cmpopts.IgnoreFields(codegen.Target{}, "Position", "Err")
			if diff := cmp.Diff(tt.want.targets, got, opts); diff != "" {
				t.Errorf("Load() diff(-want +got): %s", diff)
			}
			for _, target := range got {
				var gotErr string
				if target.Err != nil {
					gotErr = target.Err.Error()
				}
				if gotErr != tt.want.errs[target.Name] {
					t.Errorf("%s: error = %q, want %q", target.Name, gotErr, tt.want.errs[target.Name])
				}
			}
		})
	}
}

func TestGraphQLLoader_Load_error(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "broken.graphqls", []byte("type User {"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		files []string
	}{
		{name: "ファイルが存在しない", files: []string{"missing.graphqls"}},
		{name: "構文エラー", files: []string{"broken.graphqls"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loader := NewGraphQLLoader(fs, modelPath, "model", "")
			if _, err := loader.Load(tt.files, nil); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}
