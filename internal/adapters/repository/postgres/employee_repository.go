package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	pgdb "github.com/ogurasousui/employee-directory/internal/platform/db/postgres"
)

const (
	checkViolationCode            = "23514"
	invalidTextRepresentationCode = "22P02"
)

const employeeColumns = `id, first_name, last_name, age, title, department, employee_type, date_of_joining, created_at, updated_at`

// CHECK 制約名とフィールド名の対応です。
var checkConstraintFields = map[string]string{
	"employees_first_name_check":    "firstName",
	"employees_last_name_check":     "lastName",
	"employees_age_check":           "age",
	"employees_title_check":         "title",
	"employees_department_check":    "department",
	"employees_employee_type_check": "employeeType",
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool  pgdb.Queryer
	newID func() string
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool, newID: uuid.NewString}
}

// FindAll は全社員を作成順で取得します。
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]*employee.Employee, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         ORDER BY created_at ASC, id ASC
    `)
	if err != nil {
		return nil, translateEmployeePgError("find all", err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError("find all", err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError("find all", err)
	}

	return employees, nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError("find by id", err)
	}
	return found, nil
}

// Insert は社員を新規作成します。ID はここで採番します。
func (r *EmployeeRepository) Insert(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO employees (`+employeeColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+employeeColumns,
		r.newID(),
		e.FirstName,
		e.LastName,
		e.Age,
		string(e.Title),
		string(e.Department),
		string(e.EmployeeType),
		dateOnly(e.DateOfJoining),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError("insert", err)
	}
	return created, nil
}

// ReplaceByID は可変フィールドを一括で置き換えます。
func (r *EmployeeRepository) ReplaceByID(ctx context.Context, id string, e *employee.Employee) (*employee.Employee, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE employees
           SET first_name = $1,
               last_name = $2,
               age = $3,
               title = $4,
               department = $5,
               employee_type = $6,
               date_of_joining = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING `+employeeColumns,
		e.FirstName,
		e.LastName,
		e.Age,
		string(e.Title),
		string(e.Department),
		string(e.EmployeeType),
		dateOnly(e.DateOfJoining),
		e.UpdatedAt,
		id,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError("replace by id", err)
	}
	return updated, nil
}

// RemoveByID は社員を削除し、削除前の値を返します。
func (r *EmployeeRepository) RemoveByID(ctx context.Context, id string) (*employee.Employee, error) {
	row := r.pool.QueryRow(ctx, `
        DELETE FROM employees
         WHERE id = $1
        RETURNING `+employeeColumns, id)

	removed, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError("remove by id", err)
	}
	return removed, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id            string
		firstName     string
		lastName      string
		age           int
		title         string
		department    string
		employeeType  string
		dateOfJoining time.Time
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&firstName,
		&lastName,
		&age,
		&title,
		&department,
		&employeeType,
		&dateOfJoining,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	return &employee.Employee{
		ID:            id,
		FirstName:     firstName,
		LastName:      lastName,
		Age:           age,
		Title:         employee.Title(title),
		Department:    employee.Department(department),
		EmployeeType:  employee.EmployeeType(employeeType),
		DateOfJoining: dateOnly(dateOfJoining),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func translateEmployeePgError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolationCode:
			field, ok := checkConstraintFields[pgErr.ConstraintName]
			if !ok {
				field = "input"
			}
			return employee.NewValidationError(field, "violates constraint "+pgErr.ConstraintName)
		case invalidTextRepresentationCode:
			// 不正な UUID 文字列は該当レコードなしとして扱う
			return employee.ErrEmployeeNotFound
		}
	}

	return &employee.PersistenceError{Op: op, Err: err}
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
