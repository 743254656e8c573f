// Package wire はトランスポート共通の社員ペイロード変換です。
package wire

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/ogurasousui/employee-directory/internal/adapters/datescalar"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
)

const (
	FieldID            = "id"
	FieldFirstName     = "firstName"
	FieldLastName      = "lastName"
	FieldAge           = "age"
	FieldTitle         = "title"
	FieldDepartment    = "department"
	FieldEmployeeType  = "employeeType"
	FieldDateOfJoining = "dateOfJoining"
)

// EmployeeFields はレスポンスに含まれるフィールドの既定順です。
var EmployeeFields = []string{
	FieldID,
	FieldFirstName,
	FieldLastName,
	FieldAge,
	FieldDepartment,
	FieldTitle,
	FieldEmployeeType,
	FieldDateOfJoining,
}

// DecodeInput は値形式のマップを EmployeeInput に変換します。
// 型が合わない値は *employee.ValidationError になります。欠落したフィールドはゼロ値のままです。
func DecodeInput(m map[string]any) (employee.EmployeeInput, error) {
	var in employee.EmployeeInput
	for name, raw := range m {
		if err := AssignField(&in, name, raw); err != nil {
			return employee.EmployeeInput{}, err
		}
	}
	return in, nil
}

// AssignField は値形式の 1 フィールドを in に設定します。
func AssignField(in *employee.EmployeeInput, name string, raw any) error {
	if raw == nil {
		return nil
	}

	switch name {
	case FieldFirstName:
		s, err := asString(name, raw)
		if err != nil {
			return err
		}
		in.FirstName = s
	case FieldLastName:
		s, err := asString(name, raw)
		if err != nil {
			return err
		}
		in.LastName = s
	case FieldAge:
		n, err := AsInt(name, raw)
		if err != nil {
			return err
		}
		in.Age = n
	case FieldTitle:
		s, err := asString(name, raw)
		if err != nil {
			return err
		}
		in.Title = employee.Title(s)
	case FieldDepartment:
		s, err := asString(name, raw)
		if err != nil {
			return err
		}
		in.Department = employee.Department(s)
	case FieldEmployeeType:
		s, err := asString(name, raw)
		if err != nil {
			return err
		}
		in.EmployeeType = employee.EmployeeType(s)
	case FieldDateOfJoining:
		t, err := datescalar.ParseValue(raw)
		if err != nil {
			return employee.NewValidationError(name, err.Error())
		}
		in.DateOfJoining = t
	default:
		return employee.NewValidationError(name, "unknown field")
	}
	return nil
}

// EncodeEmployee は社員を出力用マップに変換します。日付はエポックミリ秒です。
func EncodeEmployee(emp *employee.Employee) map[string]any {
	if emp == nil {
		return nil
	}
	out := make(map[string]any, len(EmployeeFields))
	for _, name := range EmployeeFields {
		out[name] = FieldValue(emp, name)
	}
	return out
}

// FieldValue は出力フィールド 1 件の値を返します。未知のフィールドは nil です。
func FieldValue(emp *employee.Employee, name string) any {
	switch name {
	case FieldID:
		return emp.ID
	case FieldFirstName:
		return emp.FirstName
	case FieldLastName:
		return emp.LastName
	case FieldAge:
		return emp.Age
	case FieldTitle:
		return string(emp.Title)
	case FieldDepartment:
		return string(emp.Department)
	case FieldEmployeeType:
		return string(emp.EmployeeType)
	case FieldDateOfJoining:
		return datescalar.Serialize(emp.DateOfJoining)
	default:
		return nil
	}
}

// AsInt は整数として表現できる値だけを受け付けます。
func AsInt(field string, raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, employee.NewValidationError(field, field+" must be an integer")
		}
		return int(n), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, employee.NewValidationError(field, field+" must be an integer")
		}
		return int(v), nil
	default:
		return 0, employee.NewValidationError(field, field+" must be an integer")
	}
}

func asString(field string, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", employee.NewValidationError(field, field+" must be a string")
	}
	return s, nil
}
