package employee

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validInput() EmployeeInput {
	return EmployeeInput{
		FirstName:     "Ana",
		LastName:      "Lee",
		Age:           30,
		Title:         TitleEmployee,
		Department:    DepartmentIT,
		EmployeeType:  EmployeeTypeFullTime,
		DateOfJoining: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateInput_Valid(t *testing.T) {
	t.Parallel()

	if err := ValidateInput(validInput()); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestValidateInput_AgeBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		age     int
		wantErr bool
	}{
		{age: 19, wantErr: true},
		{age: 20, wantErr: false},
		{age: 70, wantErr: false},
		{age: 71, wantErr: true},
		{age: 0, wantErr: true},
		{age: -5, wantErr: true},
	}

	for _, tc := range cases {
		in := validInput()
		in.Age = tc.age
		err := ValidateInput(in)
		if tc.wantErr {
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("age %d: expected ValidationError, got %v", tc.age, err)
			}
			if vErr.Field != "age" {
				t.Errorf("age %d: expected field age, got %s", tc.age, vErr.Field)
			}
			if KindOf(err) != KindValidation {
				t.Errorf("age %d: expected validation kind, got %s", tc.age, KindOf(err))
			}
			continue
		}
		if err != nil {
			t.Fatalf("age %d: expected success, got %v", tc.age, err)
		}
	}
}

func TestValidateInput_EnumRejection(t *testing.T) {
	t.Parallel()

	in := validInput()
	in.Department = "Sales"
	err := ValidateInput(in)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "department" {
		t.Fatalf("expected field department, got %s", vErr.Field)
	}
	if !strings.Contains(vErr.Reason, "IT Marketing HR Engineering") {
		t.Errorf("expected reason to list allowed values, got %q", vErr.Reason)
	}

	in.Department = DepartmentIT
	if err := ValidateInput(in); err != nil {
		t.Fatalf("expected IT to be accepted, got %v", err)
	}

	in.Title = "CEO"
	if !errors.Is(ValidateInput(in), ErrInvalidInput) {
		t.Fatal("expected invalid title to be rejected")
	}

	in = validInput()
	in.EmployeeType = "full-time"
	if !errors.Is(ValidateInput(in), ErrInvalidInput) {
		t.Fatal("expected enum matching to be case sensitive")
	}
}

func TestValidateInput_RequiredFields(t *testing.T) {
	t.Parallel()

	err := ValidateInput(EmployeeInput{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got := make(map[string]bool)
	for _, v := range vErr.Violations {
		got[v.Field] = true
	}
	for _, field := range []string{"firstName", "lastName", "age", "title", "department", "employeeType", "dateOfJoining"} {
		if !got[field] {
			t.Errorf("expected violation for %s, got %+v", field, vErr.Violations)
		}
	}
	if vErr.Field != "firstName" {
		t.Errorf("expected first violation to be firstName, got %s", vErr.Field)
	}
}

func TestNormalizeInput(t *testing.T) {
	t.Parallel()

	in := validInput()
	in.FirstName = "  Ana "
	in.LastName = "   "
	in.DateOfJoining = time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)

	normalized := normalizeInput(in)
	if normalized.FirstName != "Ana" {
		t.Errorf("expected trimmed first name, got %q", normalized.FirstName)
	}
	if !normalized.DateOfJoining.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected calendar date, got %v", normalized.DateOfJoining)
	}

	var vErr *ValidationError
	if !errors.As(ValidateInput(normalized), &vErr) || vErr.Field != "lastName" {
		t.Fatalf("expected blank last name to be rejected, got %v", vErr)
	}
}
