package employee

import "context"

// Repository は社員永続化の抽象です。
// 対象が存在しない場合は ErrEmployeeNotFound、インフラ障害は *PersistenceError を返します。
type Repository interface {
	FindAll(ctx context.Context) ([]*Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	// Insert は ID を採番して保存し、採番後のレコードを返します。
	Insert(ctx context.Context, employee *Employee) (*Employee, error)
	// ReplaceByID は可変フィールドを置き換え、更新後のレコードを返します。ID は変更しません。
	ReplaceByID(ctx context.Context, id string, employee *Employee) (*Employee, error)
	// RemoveByID は削除し、削除直前のレコードを返します。
	RemoveByID(ctx context.Context, id string) (*Employee, error)
}
