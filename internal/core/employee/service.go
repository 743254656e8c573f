package employee

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	ListEmployees(ctx context.Context) ([]*Employee, error)
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	CreateEmployee(ctx context.Context, in EmployeeInput) (*Employee, error)
	UpdateEmployee(ctx context.Context, id string, in EmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, id string) (*Employee, error)
}

var _ UseCase = (*Service)(nil)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// ListEmployees は全社員を保存順で返します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, persistenceFailure("find all", err)
	}
	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

// GetEmployee は社員を取得します。存在しない場合はエラーではなく nil を返します。
func (s *Service) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	normalized, ok := normalizeID(id)
	if !ok {
		return nil, nil
	}

	found, err := s.repo.FindByID(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, nil
		}
		return nil, persistenceFailure("find by id", err)
	}
	return found, nil
}

// CreateEmployee は入力を検証してから社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (*Employee, error) {
	normalized := normalizeInput(in)
	if err := ValidateInput(normalized); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	emp := newEmployee(normalized)
	emp.CreatedAt = now
	emp.UpdatedAt = now

	created, err := s.repo.Insert(ctx, emp)
	if err != nil {
		return nil, persistenceFailure("insert", err)
	}
	return created, nil
}

// UpdateEmployee は可変フィールドを入力で置き換えます。ID は変わりません。
func (s *Service) UpdateEmployee(ctx context.Context, id string, in EmployeeInput) (*Employee, error) {
	normalized := normalizeInput(in)
	if err := ValidateInput(normalized); err != nil {
		return nil, err
	}

	targetID, ok := normalizeID(id)
	if !ok {
		return nil, errors.Wrapf(ErrEmployeeNotFound, "id %q", id)
	}

	emp := newEmployee(normalized)
	emp.ID = targetID
	emp.UpdatedAt = s.clock.Now()

	updated, err := s.repo.ReplaceByID(ctx, targetID, emp)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, errors.Wrapf(err, "id %q", targetID)
		}
		return nil, persistenceFailure("replace by id", err)
	}
	return updated, nil
}

// DeleteEmployee は社員を削除し、削除直前のレコードを返します。
func (s *Service) DeleteEmployee(ctx context.Context, id string) (*Employee, error) {
	targetID, ok := normalizeID(id)
	if !ok {
		return nil, errors.Wrapf(ErrEmployeeNotFound, "id %q", id)
	}

	removed, err := s.repo.RemoveByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return nil, errors.Wrapf(err, "id %q", targetID)
		}
		return nil, persistenceFailure("remove by id", err)
	}
	return removed, nil
}

func newEmployee(in EmployeeInput) *Employee {
	return &Employee{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Age:           in.Age,
		Title:         in.Title,
		Department:    in.Department,
		EmployeeType:  in.EmployeeType,
		DateOfJoining: in.DateOfJoining,
	}
}

// normalizeID は UUID として解釈できない ID を存在しないものとして扱います。
func normalizeID(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// persistenceFailure は種別を持たないリポジトリのエラーを PersistenceError に包みます。
func persistenceFailure(op string, err error) error {
	if KindOf(err) != KindUnknown {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
