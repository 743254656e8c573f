package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// EmployeeServiceName は gRPC のサービス名です。
const EmployeeServiceName = "employee.v1.EmployeeService"

// gRPC メソッド名です。
const (
	MethodListEmployees  = "ListEmployees"
	MethodGetEmployee    = "GetEmployee"
	MethodCreateEmployee = "CreateEmployee"
	MethodUpdateEmployee = "UpdateEmployee"
	MethodDeleteEmployee = "DeleteEmployee"
)

// EmployeeServiceServer は EmployeeService のサーバー側インターフェースです。
// メッセージは google.protobuf.Struct で、形は GraphQL のペイロードと同じです。
type EmployeeServiceServer interface {
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(EmployeeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// EmployeeServiceDesc は EmployeeService のサービス定義です。
var EmployeeServiceDesc = grpc.ServiceDesc{
	ServiceName: EmployeeServiceName,
	HandlerType: (*EmployeeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodListEmployees, Handler: unaryHandler(MethodListEmployees, EmployeeServiceServer.ListEmployees)},
		{MethodName: MethodGetEmployee, Handler: unaryHandler(MethodGetEmployee, EmployeeServiceServer.GetEmployee)},
		{MethodName: MethodCreateEmployee, Handler: unaryHandler(MethodCreateEmployee, EmployeeServiceServer.CreateEmployee)},
		{MethodName: MethodUpdateEmployee, Handler: unaryHandler(MethodUpdateEmployee, EmployeeServiceServer.UpdateEmployee)},
		{MethodName: MethodDeleteEmployee, Handler: unaryHandler(MethodDeleteEmployee, EmployeeServiceServer.DeleteEmployee)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "employee/v1/employee.proto",
}

// RegisterEmployeeServiceServer は srv を s に登録します。
func RegisterEmployeeServiceServer(s grpc.ServiceRegistrar, srv EmployeeServiceServer) {
	s.RegisterService(&EmployeeServiceDesc, srv)
}

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + EmployeeServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EmployeeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EmployeeServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// EmployeeServiceClient は EmployeeService のクライアントです。
type EmployeeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewEmployeeServiceClient は EmployeeServiceClient を生成します。
func NewEmployeeServiceClient(cc grpc.ClientConnInterface) *EmployeeServiceClient {
	return &EmployeeServiceClient{cc: cc}
}

func (c *EmployeeServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+EmployeeServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEmployees は全社員を取得します。
func (c *EmployeeServiceClient) ListEmployees(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListEmployees, in, opts...)
}

// GetEmployee は社員を取得します。
func (c *EmployeeServiceClient) GetEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetEmployee, in, opts...)
}

// CreateEmployee は社員を作成します。
func (c *EmployeeServiceClient) CreateEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateEmployee, in, opts...)
}

// UpdateEmployee は社員を更新します。
func (c *EmployeeServiceClient) UpdateEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodUpdateEmployee, in, opts...)
}

// DeleteEmployee は社員を削除します。
func (c *EmployeeServiceClient) DeleteEmployee(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodDeleteEmployee, in, opts...)
}
