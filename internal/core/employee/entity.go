package employee

import "time"

// Title は役職を表します。
type Title string

const (
	TitleEmployee Title = "Employee"
	TitleManager  Title = "Manager"
	TitleDirector Title = "Director"
	TitleVP       Title = "VP"
)

// Department は所属部署を表します。
type Department string

const (
	DepartmentIT          Department = "IT"
	DepartmentMarketing   Department = "Marketing"
	DepartmentHR          Department = "HR"
	DepartmentEngineering Department = "Engineering"
)

// EmployeeType は雇用形態を表します。
type EmployeeType string

const (
	EmployeeTypeFullTime EmployeeType = "Full-Time"
	EmployeeTypePartTime EmployeeType = "Part-Time"
	EmployeeTypeContract EmployeeType = "Contract"
	EmployeeTypeSeasonal EmployeeType = "Seasonal"
)

const (
	MinAge = 20
	MaxAge = 70
)

// Employee は社員エンティティです。
// CreatedAt と UpdatedAt は内部管理用で、API には公開されません。
type Employee struct {
	ID            string
	FirstName     string
	LastName      string
	Age           int
	Title         Title
	Department    Department
	EmployeeType  EmployeeType
	DateOfJoining time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EmployeeInput は作成・更新で共通に使う入力です。ID 以外の全フィールドを持ちます。
type EmployeeInput struct {
	FirstName     string       `json:"firstName" validate:"required"`
	LastName      string       `json:"lastName" validate:"required"`
	Age           int          `json:"age" validate:"required,min=20,max=70"`
	Title         Title        `json:"title" validate:"required,oneof=Employee Manager Director VP"`
	Department    Department   `json:"department" validate:"required,oneof=IT Marketing HR Engineering"`
	EmployeeType  EmployeeType `json:"employeeType" validate:"required,oneof=Full-Time Part-Time Contract Seasonal"`
	DateOfJoining time.Time    `json:"dateOfJoining" validate:"required"`
}
