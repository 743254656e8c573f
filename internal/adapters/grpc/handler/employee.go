package handler

import (
	"context"
	"strings"

	"github.com/ogurasousui/employee-directory/internal/adapters/wire"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ EmployeeServiceServer = (*EmployeeGrpcHandler)(nil)

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
}

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// ListEmployees は全社員を {"employees": [...]} で返します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	employees, err := h.svc.ListEmployees(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	list := make([]any, 0, len(employees))
	for _, emp := range employees {
		list = append(list, wire.EncodeEmployee(emp))
	}
	return newResponse(map[string]any{"employees": list})
}

// GetEmployee は社員を返します。存在しない場合 employee は null です。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}

	found, err := h.svc.GetEmployee(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}
	return employeeResponse(found)
}

// CreateEmployee は社員を作成します。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := requestInput(req)
	if err != nil {
		return nil, err
	}

	created, err := h.svc.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return employeeResponse(created)
}

// UpdateEmployee は社員の可変フィールドを置き換えます。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}
	in, err := requestInput(req)
	if err != nil {
		return nil, err
	}

	updated, err := h.svc.UpdateEmployee(ctx, id, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return employeeResponse(updated)
}

// DeleteEmployee は社員を削除し、削除前の値を返します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requestID(req)
	if err != nil {
		return nil, err
	}

	removed, err := h.svc.DeleteEmployee(ctx, id)
	if err != nil {
		return nil, toStatusError(err)
	}
	return employeeResponse(removed)
}

func requestID(req *structpb.Struct) (string, error) {
	if req == nil {
		return "", status.Error(codes.InvalidArgument, "request is required")
	}
	v, ok := req.GetFields()["id"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "id is required")
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || strings.TrimSpace(s.StringValue) == "" {
		return "", status.Error(codes.InvalidArgument, "id must be a non-empty string")
	}
	return s.StringValue, nil
}

func requestInput(req *structpb.Struct) (employee.EmployeeInput, error) {
	if req == nil {
		return employee.EmployeeInput{}, status.Error(codes.InvalidArgument, "request is required")
	}
	v, ok := req.GetFields()["input"]
	if !ok || v.GetStructValue() == nil {
		return employee.EmployeeInput{}, status.Error(codes.InvalidArgument, "input must be an object")
	}

	in, err := wire.DecodeInput(v.GetStructValue().AsMap())
	if err != nil {
		return employee.EmployeeInput{}, toStatusError(err)
	}
	return in, nil
}

func employeeResponse(emp *employee.Employee) (*structpb.Struct, error) {
	var payload any
	if emp != nil {
		payload = wire.EncodeEmployee(emp)
	}
	return newResponse(map[string]any{"employee": payload})
}

func newResponse(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}
