package graphql

import (
	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/ogurasousui/employee-directory/internal/adapters/datescalar"
	"github.com/ogurasousui/employee-directory/internal/adapters/wire"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/vektah/gqlparser/v2/ast"
)

func (ec *executionContext) idArgument(field gqlgen.CollectedField) (string, error) {
	raw, ok := field.ArgumentMap(ec.Variables)["id"]
	if !ok || raw == nil {
		return "", employee.NewValidationError("id", "id is required")
	}
	id, err := gqlgen.UnmarshalID(raw)
	if err != nil {
		return "", employee.NewValidationError("id", err.Error())
	}
	return id, nil
}

// inputArgument は input 引数を EmployeeInput に変換します。
// 変数で渡された値は値形式、クエリに直接書かれた値はリテラル形式として扱います。
func (ec *executionContext) inputArgument(field gqlgen.CollectedField) (employee.EmployeeInput, error) {
	arg := field.Arguments.ForName("input")
	if arg == nil || arg.Value == nil {
		return employee.EmployeeInput{}, employee.NewValidationError("input", "input is required")
	}

	switch arg.Value.Kind {
	case ast.Variable:
		raw, ok := ec.Variables[arg.Value.Raw].(map[string]any)
		if !ok {
			return employee.EmployeeInput{}, employee.NewValidationError("input", "input must be an object")
		}
		return wire.DecodeInput(raw)
	case ast.ObjectValue:
		return ec.literalInput(arg.Value)
	default:
		return employee.EmployeeInput{}, employee.NewValidationError("input", "input must be an object")
	}
}

func (ec *executionContext) literalInput(value *ast.Value) (employee.EmployeeInput, error) {
	var in employee.EmployeeInput
	for _, child := range value.Children {
		if child.Value == nil {
			continue
		}

		if child.Value.Kind == ast.Variable {
			if err := wire.AssignField(&in, child.Name, ec.Variables[child.Value.Raw]); err != nil {
				return employee.EmployeeInput{}, err
			}
			continue
		}

		if child.Name == wire.FieldDateOfJoining {
			t, ok := datescalar.ParseLiteral(child.Value)
			if !ok {
				return employee.EmployeeInput{}, employee.NewValidationError(child.Name, "Date literal must be an integer of epoch milliseconds")
			}
			in.DateOfJoining = t
			continue
		}

		raw, err := child.Value.Value(ec.Variables)
		if err != nil {
			return employee.EmployeeInput{}, employee.NewValidationError(child.Name, err.Error())
		}
		if err := wire.AssignField(&in, child.Name, raw); err != nil {
			return employee.EmployeeInput{}, err
		}
	}
	return in, nil
}
