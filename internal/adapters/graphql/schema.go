// Package graphql は社員 API の GraphQL トランスポートを提供します。
//
// スキーマの解析と検証は gqlparser、実行は gqlgen のランタイムに任せ、
// ExecutableSchema が UseCase を呼んでフィールドを解決します。
package graphql

import (
	_ "embed"

	"github.com/go-faster/errors"
	"github.com/ogurasousui/employee-directory/internal/adapters/datescalar"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var schemaSDL string

// LoadSchema は埋め込みスキーマを読み込みます。
func LoadSchema() (*ast.Schema, error) {
	return parseSchema(schemaSDL)
}

func parseSchema(sdl string) (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return nil, errors.Wrap(err, "load graphql schema")
	}
	if def := schema.Types[datescalar.Name]; def == nil || def.Kind != ast.Scalar {
		return nil, errors.Errorf("load graphql schema: scalar %s is not declared", datescalar.Name)
	}
	return schema, nil
}
