// Package buildergen は codegen が組み立てたビルダーを Go のソースファイルとして出力する。
//
// 1 つの対象型につき 1 ファイル（<snake(型名)>_builder_gen.go）を生成する。生成される
// ファイルには以下が含まれる:
//   - ビルダー型と New<型名>Builder コンストラクタ
//   - フィールドごとの setter
//   - 必須フィールドを検証する validate メソッド
//   - 検証後に対象型を構築する Build メソッド
package buildergen

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"github.com/spf13/afero"

	"github.com/Yamashou/buildergen/codegen"
	"github.com/Yamashou/buildergen/logger"
)

const fileSuffix = "_builder_gen.go"

// Output は生成先のディレクトリとパッケージを表す。
type Output struct {
	Dir        string
	Package    string
	ImportPath string
}

// Artifact は 1 つの対象型から生成されたソースファイル。
type Artifact struct {
	// Name is the builder type name, e.g. "UserBuilder"
	Name     string
	Target   string
	Filename string
	Source   []byte
}

// Plugin は対象型からビルダーのソースを生成し、ファイルシステムに書き込む。
type Plugin struct {
	output     Output
	resolver   *codegen.TypeResolver
	classifier *codegen.NullabilityClassifier
	assembler  *codegen.Assembler
	generator  *CodeGenerator
	fs         afero.Fs
	reporter   logger.Reporter
}

// New は新しい buildergen プラグインを作成する。
//
// パラメータ:
//   - output: 生成先
//   - names: 型名の正規化テーブル
//   - marker: 必須判定に使うマーカー（空の場合は codegen.NotNullMarker）
//   - fs: 書き込み先のファイルシステム
//   - reporter: 診断の出力先
func New(output Output, names codegen.NameTable, marker string, fs afero.Fs, reporter logger.Reporter) *Plugin {
	resolver := codegen.NewTypeResolver(names)

	return &Plugin{
		output:     output,
		resolver:   resolver,
		classifier: codegen.NewNullabilityClassifier(marker),
		assembler:  codegen.NewAssembler(resolver),
		generator:  NewCodeGenerator(),
		fs:         fs,
		reporter:   reporter,
	}
}

// Name はこのプラグインの名前を返す。
func (p *Plugin) Name() string {
	return "buildergen"
}

// Generate は target のビルダーを生成する。target が構造体でない場合や、フィールドの型を
// 解決できない場合は *codegen.ElementShapeError を返す。
func (p *Plugin) Generate(target *codegen.Target) (*Artifact, error) {
	qualified := target.QualifiedName()
	if target.Err != nil {
		return nil, &codegen.ElementShapeError{Target: qualified, Reason: "cannot describe element", Err: target.Err}
	}
	if target.Kind != codegen.StructElement {
		return nil, &codegen.ElementShapeError{Target: qualified, Reason: fmt.Sprintf("%s is not a struct type", target.Kind)}
	}
	// 出力先が別パッケージの場合、非公開の型はビルダーから参照できない
	if target.PkgPath != p.output.ImportPath && !token.IsExported(target.Name) {
		return nil, &codegen.ElementShapeError{Target: qualified, Reason: fmt.Sprintf("unexported type %s cannot be referenced from package %s", target.Name, p.output.ImportPath)}
	}
	for _, field := range target.Fields {
		if ref := p.inaccessible(field.Type); ref != "" {
			return nil, &codegen.ElementShapeError{Target: qualified, Reason: fmt.Sprintf("field %s: unexported type %s cannot be referenced from package %s", field.Name, ref, p.output.ImportPath)}
		}
	}

	p.resolver.DeclarePackage(target.PkgPath, target.Package)
	fields := p.classifier.Classify(target.Fields)
	gen, err := p.assembler.Assemble(&codegen.BuilderModel{
		Target:      target,
		Fields:      fields,
		PackageName: p.output.Package,
		PkgPath:     p.output.ImportPath,
	})
	if err != nil {
		return nil, err
	}
	for _, property := range gen.Properties {
		p.reporter.Note("field added", "builder", gen.Name, "field", property.Field.Name, "required", property.Field.Required)
	}

	filename := filepath.Join(p.output.Dir, strcase.ToSnake(target.Name)+fileSuffix)
	source, err := formatSource(filename, []byte(p.generator.Generate(gen)))
	if err != nil {
		return nil, &codegen.ElementShapeError{Target: qualified, Reason: "generated code does not parse", Err: err}
	}

	return &Artifact{
		Name:     gen.Name,
		Target:   qualified,
		Filename: filename,
		Source:   source,
	}, nil
}

// inaccessible returns the first declared type in shape that the output package
// cannot name, or "" when there is none.
func (p *Plugin) inaccessible(shape *codegen.TypeShape) string {
	if shape == nil {
		return ""
	}

	if shape.Kind == codegen.Declared {
		pkgPath, name := codegen.SplitQualifiedName(p.resolver.Canonical(shape.Name))
		if pkgPath != "" && pkgPath != p.output.ImportPath && !token.IsExported(name) {
			return codegen.JoinQualifiedName(pkgPath, name)
		}
	}

	for _, s := range append([]*codegen.TypeShape{shape.Key, shape.Elem}, shape.Args...) {
		if ref := p.inaccessible(s); ref != "" {
			return ref
		}
	}

	return ""
}

// Write は artifact をファイルシステムに書き込む。ファイルハンドルはどの経路でも閉じられる。
func (p *Plugin) Write(artifact *Artifact) (err error) {
	if err := p.fs.MkdirAll(filepath.Dir(artifact.Filename), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := p.fs.OpenFile(artifact.Filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", artifact.Filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", artifact.Filename, cerr)
		}
	}()

	if _, err := f.Write(artifact.Source); err != nil {
		return fmt.Errorf("write %s: %w", artifact.Filename, err)
	}

	return nil
}
