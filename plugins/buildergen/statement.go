package buildergen

import (
	"fmt"
	"strings"
)

// Statement は生成されるメソッド本体の 1 ステートメントを表す。
//
// String メソッドは指定されたインデントレベルで文字列表現を返す。
type Statement interface {
	String(indent int) string
}

// VariableDecl は変数宣言を表す。
//
// 例: var missing []string
type VariableDecl struct {
	Name string // 変数名
	Type string // 変数の型
}

// String は変数宣言の文字列表現を返す。
func (v *VariableDecl) String(_ int) string {
	return fmt.Sprintf("var %s %s", v.Name, v.Type)
}

// IfStatement は if 文を表す。
//
// 例:
//
//	if b.name == nil {
//	    // Body
//	}
type IfStatement struct {
	Condition string      // 条件式
	Body      []Statement // if ブロック内のステートメント
}

// String は if 文の文字列表現を返す。
func (i *IfStatement) String(indent int) string {
	var buf strings.Builder
	tabs := strings.Repeat("\t", indent)

	buf.WriteString(fmt.Sprintf("if %s {\n", i.Condition))
	writeBody(&buf, tabs, indent, i.Body)
	buf.WriteString(tabs + "}")

	return buf.String()
}

// Assignment は代入文を表す。
//
// 例: b.name = &v
type Assignment struct {
	Target string // 代入先
	Value  string // 代入する値
}

// String は代入文の文字列表現を返す。
func (a *Assignment) String(_ int) string {
	return fmt.Sprintf("%s = %s", a.Target, a.Value)
}

// ReturnStatement は return 文を表す。
//
// 例: return b
type ReturnStatement struct {
	Value string // 返す値（空の場合は単なる return）
}

// String は return 文の文字列表現を返す。
func (r *ReturnStatement) String(_ int) string {
	if r.Value == "" {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}

// ErrorCheckStatement はエラーチェックパターンを表す。
//
// 例:
//
//	if err := b.validate(); err != nil {
//	    return nil, err
//	}
type ErrorCheckStatement struct {
	ErrorExpr string      // エラーを返す式
	Body      []Statement // err != nil の場合に実行するステートメント
}

// String はエラーチェック文の文字列表現を返す。
func (e *ErrorCheckStatement) String(indent int) string {
	var buf strings.Builder
	tabs := strings.Repeat("\t", indent)

	buf.WriteString(fmt.Sprintf("if err := %s; err != nil {\n", e.ErrorExpr))
	writeBody(&buf, tabs, indent, e.Body)
	buf.WriteString(tabs + "}")

	return buf.String()
}

// CompositeLiteral はキー付きの複合リテラルを表す。
//
// 例:
//
//	&User{
//	    Name: *b.name,
//	}
type CompositeLiteral struct {
	Type     string       // 型名（例: "&User"）
	Elements []KeyedValue // 要素
}

// KeyedValue は複合リテラルの 1 要素を表す。
type KeyedValue struct {
	Key   string
	Value string
}

// String は複合リテラルの文字列表現を返す。要素がない場合は 1 行で返す。
func (c *CompositeLiteral) String(indent int) string {
	if len(c.Elements) == 0 {
		return c.Type + "{}"
	}

	var buf strings.Builder
	tabs := strings.Repeat("\t", indent)

	buf.WriteString(c.Type + "{\n")
	for _, e := range c.Elements {
		buf.WriteString(fmt.Sprintf("%s\t%s: %s,\n", tabs, e.Key, e.Value))
	}
	buf.WriteString(tabs + "}")

	return buf.String()
}

func writeBody(buf *strings.Builder, tabs string, indent int, body []Statement) {
	for _, stmt := range body {
		buf.WriteString(tabs + "\t")
		buf.WriteString(stmt.String(indent + 1))
		buf.WriteString("\n")
	}
}
