package graphql

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	maxRequestBytes = 1 << 20
	queryCacheSize  = 1000
)

// NewHandler は /graphql の HTTP ハンドラを生成します。GET (クエリ文字列) と POST (JSON) を受け付けます。
func NewHandler(es *ExecutableSchema) http.Handler {
	srv := handler.New(es)
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.SetQueryCache(lru.New[*ast.QueryDocument](queryCacheSize))
	srv.SetErrorPresenter(es.presentError)
	srv.SetRecoverFunc(es.recoverPanic)
	return http.MaxBytesHandler(srv, maxRequestBytes)
}

// PlaygroundHandler は endpoint に向いた GraphQL playground を返します。
func PlaygroundHandler(endpoint string) http.Handler {
	return playground.Handler("Employee Directory", endpoint)
}
