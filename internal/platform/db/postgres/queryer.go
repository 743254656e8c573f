package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Queryer は pgxpool.Pool および pgx.Tx と互換性のある問い合わせインターフェースです。
// 書き込みもすべて RETURNING 付きの QueryRow で行います。
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pinger は疎通確認ができる接続を表します。
type Pinger interface {
	Ping(ctx context.Context) error
}
