//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	repo "github.com/ogurasousui/employee-directory/internal/adapters/repository/postgres"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	pg "github.com/ogurasousui/employee-directory/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

func TestEmployeeCRUDIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database, nil)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	employeeRepo := repo.NewEmployeeRepository(pool)
	svc := employee.NewService(employeeRepo, stubClock{now: time.Now().UTC()})

	input := employee.EmployeeInput{
		FirstName:     "Integration",
		LastName:      "Test",
		Age:           20,
		Title:         employee.TitleEmployee,
		Department:    employee.DepartmentEngineering,
		EmployeeType:  employee.EmployeeTypeSeasonal,
		DateOfJoining: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	created, err := svc.CreateEmployee(ctx, input)
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	found, err := svc.GetEmployee(ctx, created.ID)
	if err != nil || found == nil {
		t.Fatalf("GetEmployee error: %v (found=%v)", err, found)
	}
	if !found.DateOfJoining.Equal(input.DateOfJoining) || found.Age != 20 {
		t.Fatalf("unexpected stored employee %+v", found)
	}

	input.Title = employee.TitleVP
	input.Age = 70
	updated, err := svc.UpdateEmployee(ctx, created.ID, input)
	if err != nil {
		t.Fatalf("UpdateEmployee error: %v", err)
	}
	if updated.ID != created.ID || updated.Title != employee.TitleVP || updated.Age != 70 {
		t.Fatalf("update not applied: %+v", updated)
	}

	bad := input
	bad.Age = 71
	if _, err := svc.UpdateEmployee(ctx, created.ID, bad); employee.KindOf(err) != employee.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// CHECK 制約はサービスの検証をすり抜けた値も拒否する
	raw := &employee.Employee{
		FirstName:     "Raw",
		LastName:      "Insert",
		Age:           19,
		Title:         employee.TitleEmployee,
		Department:    employee.DepartmentIT,
		EmployeeType:  employee.EmployeeTypeFullTime,
		DateOfJoining: input.DateOfJoining,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if _, err := employeeRepo.Insert(ctx, raw); employee.KindOf(err) != employee.KindValidation {
		t.Fatalf("expected check constraint violation, got %v", err)
	}

	list, err := svc.ListEmployees(ctx)
	if err != nil {
		t.Fatalf("ListEmployees error: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	removed, err := svc.DeleteEmployee(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteEmployee error: %v", err)
	}
	if removed.ID != created.ID || removed.Title != employee.TitleVP {
		t.Fatalf("unexpected removed employee %+v", removed)
	}

	if _, err := svc.DeleteEmployee(ctx, created.ID); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if got, err := svc.GetEmployee(ctx, created.ID); err != nil || got != nil {
		t.Fatalf("expected absent employee, got %v %v", got, err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
