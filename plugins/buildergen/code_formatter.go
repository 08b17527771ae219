package buildergen

import (
	"fmt"
	"strings"
)

// CodeFormatter は生成されるコードをフォーマットする。
type CodeFormatter struct{}

// NewCodeFormatter は新しい CodeFormatter を作成する。
func NewCodeFormatter() *CodeFormatter {
	return &CodeFormatter{}
}

// FormatHeader はファイル先頭のコメント、package 句、import 宣言をフォーマットする。
func (f *CodeFormatter) FormatHeader(packageName, imports string) string {
	var buf strings.Builder

	buf.WriteString(generatedHeader + "\n\n")
	buf.WriteString(fmt.Sprintf("package %s\n\n", packageName))
	if imports != "" {
		buf.WriteString(imports + "\n")
	}

	return buf.String()
}

// FormatTypeDecl はビルダーの型定義を文字列にフォーマットする。
//
// パラメータ:
//   - builderName: ビルダー型名（例: "UserBuilder"）
//   - targetName: 対象の型名（例: "User"）
//   - fields: フィールド名と型の組
//
// 戻り値: フォーマットされた型定義
func (f *CodeFormatter) FormatTypeDecl(builderName, targetName string, fields []KeyedValue) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("// %s builds %s values. A builder must not be shared between goroutines.\n", builderName, targetName))
	if len(fields) == 0 {
		buf.WriteString(fmt.Sprintf("type %s struct{}\n\n", builderName))
		return buf.String()
	}

	buf.WriteString(fmt.Sprintf("type %s struct {\n", builderName))
	for _, field := range fields {
		buf.WriteString(fmt.Sprintf("\t%s %s\n", field.Key, field.Value))
	}
	buf.WriteString("}\n\n")

	return buf.String()
}

// FormatConstructor はコンストラクタ関数をフォーマットする。
func (f *CodeFormatter) FormatConstructor(constructorName, builderName string) string {
	return fmt.Sprintf(`// %s returns an empty %s.
func %s() *%s {
	return &%s{}
}

`, constructorName, builderName, constructorName, builderName, builderName)
}

// FormatSetter は setter メソッドをフォーマットする。
//
// 必須フィールドの setter は値を受け取りそのアドレスを保持する。任意フィールドの
// setter はポインタをそのまま保持し、nil は未設定を意味する。
//
// 戻り値: フォーマットされた setter メソッド定義（例: "func (b *UserBuilder) Name(v string) *UserBuilder { ... }"）
func (f *CodeFormatter) FormatSetter(builderName, targetName, setterName, param, paramType, property string, optional bool) string {
	doc := fmt.Sprintf("// %s sets %s.%s.\n", setterName, targetName, setterName)
	value := "&" + param
	if optional {
		doc = fmt.Sprintf("// %s sets %s.%s. A nil value leaves it unset.\n", setterName, targetName, setterName)
		value = param
	}

	return doc + f.FormatMethod(builderName, setterName, fmt.Sprintf("%s %s", param, paramType), "*"+builderName, []Statement{
		&Assignment{Target: "b." + property, Value: value},
		&ReturnStatement{Value: "b"},
	})
}

// FormatMethod はポインタレシーバ b を持つメソッドをフォーマットする。
func (f *CodeFormatter) FormatMethod(builderName, methodName, params, results string, body []Statement) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("func (b *%s) %s(%s) %s {\n", builderName, methodName, params, results))
	for _, stmt := range body {
		buf.WriteString("\t")
		buf.WriteString(stmt.String(1))
		buf.WriteString("\n")
	}
	buf.WriteString("}\n\n")

	return buf.String()
}
