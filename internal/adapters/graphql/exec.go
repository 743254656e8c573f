package graphql

import (
	"bytes"
	"context"
	"strconv"
	"sync/atomic"
	"time"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/ogurasousui/employee-directory/internal/adapters/datescalar"
	"github.com/ogurasousui/employee-directory/internal/adapters/wire"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

var (
	queryImplementors    = []string{"Query"}
	mutationImplementors = []string{"Mutation"}
	employeeImplementors = []string{"Employee"}
)

// ExecutableSchema は gqlgen の実行器から呼ばれる社員スキーマの実装です。
// フィールドの収集と書き出しは gqlgen のランタイムに任せ、引数は AST から直接読み取ります。
type ExecutableSchema struct {
	schema *ast.Schema
	svc    employee.UseCase
	logger *logrus.Entry
}

var _ gqlgen.ExecutableSchema = (*ExecutableSchema)(nil)

// NewExecutableSchema は ExecutableSchema を生成します。
func NewExecutableSchema(schema *ast.Schema, svc employee.UseCase, logger *logrus.Entry) *ExecutableSchema {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ExecutableSchema{schema: schema, svc: svc, logger: logger}
}

// Schema は読み込み済みのスキーマを返します。
func (es *ExecutableSchema) Schema() *ast.Schema {
	return es.schema
}

// Complexity は複雑度制限を使わないため常に未定義です。
func (es *ExecutableSchema) Complexity(typeName, fieldName string, childComplexity int, args map[string]any) (int, bool) {
	return 0, false
}

// Exec は操作の種類に応じたルートオブジェクトを 1 回だけ解決します。
func (es *ExecutableSchema) Exec(ctx context.Context) gqlgen.ResponseHandler {
	opCtx := gqlgen.GetOperationContext(ctx)
	ec := &executionContext{OperationContext: opCtx, es: es}
	first := true

	var root func(context.Context, ast.SelectionSet) gqlgen.Marshaler
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = ec._Query
	case ast.Mutation:
		root = ec._Mutation
	default:
		return gqlgen.OneShot(gqlgen.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	return func(ctx context.Context) *gqlgen.Response {
		if !first {
			return nil
		}
		first = false

		data := root(ctx, opCtx.Operation.SelectionSet)
		var buf bytes.Buffer
		data.MarshalGQL(&buf)
		return &gqlgen.Response{Data: buf.Bytes()}
	}
}

type executionContext struct {
	*gqlgen.OperationContext
	es *ExecutableSchema
}

// _Query のルートフィールドは並行に解決されます。
func (ec *executionContext) _Query(ctx context.Context, sel ast.SelectionSet) gqlgen.Marshaler {
	fields := gqlgen.CollectFields(ec.OperationContext, sel, queryImplementors)
	ctx = gqlgen.WithFieldContext(ctx, &gqlgen.FieldContext{Object: "Query"})

	out := gqlgen.NewFieldSet(fields)
	for i, field := range fields {
		innerCtx := gqlgen.WithRootFieldContext(ctx, &gqlgen.RootFieldContext{Object: field.Name, Field: field})

		var resolve func(context.Context, gqlgen.CollectedField) gqlgen.Marshaler
		switch field.Name {
		case "__typename":
			out.Values[i] = gqlgen.MarshalString("Query")
			continue
		case "employees":
			resolve = ec._Query_employees
		case "employee":
			resolve = ec._Query_employee
		case "__schema", "__type":
			resolve = ec._Query_introspection
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}

		out.Concurrently(i, func(context.Context) gqlgen.Marshaler {
			return ec.RootResolverMiddleware(innerCtx, func(ctx context.Context) gqlgen.Marshaler {
				res := resolve(ctx, field)
				if res == gqlgen.Null && isNonNull(field) {
					atomic.AddUint32(&out.Invalids, 1)
				}
				return res
			})
		})
	}
	out.Dispatch(ctx)
	if out.Invalids > 0 {
		return gqlgen.Null
	}
	return out
}

// _Mutation のルートフィールドは記述順に 1 件ずつ実行されます。
func (ec *executionContext) _Mutation(ctx context.Context, sel ast.SelectionSet) gqlgen.Marshaler {
	fields := gqlgen.CollectFields(ec.OperationContext, sel, mutationImplementors)
	ctx = gqlgen.WithFieldContext(ctx, &gqlgen.FieldContext{Object: "Mutation"})

	out := gqlgen.NewFieldSet(fields)
	for i, field := range fields {
		innerCtx := gqlgen.WithRootFieldContext(ctx, &gqlgen.RootFieldContext{Object: field.Name, Field: field})

		var resolve func(context.Context, gqlgen.CollectedField) gqlgen.Marshaler
		switch field.Name {
		case "__typename":
			out.Values[i] = gqlgen.MarshalString("Mutation")
			continue
		case "createEmployee":
			resolve = ec._Mutation_createEmployee
		case "updateEmployee":
			resolve = ec._Mutation_updateEmployee
		case "deleteEmployee":
			resolve = ec._Mutation_deleteEmployee
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}

		out.Values[i] = ec.RootResolverMiddleware(innerCtx, func(ctx context.Context) gqlgen.Marshaler {
			return resolve(ctx, field)
		})
		if out.Values[i] == gqlgen.Null && isNonNull(field) {
			out.Invalids++
		}
	}
	out.Dispatch(ctx)
	if out.Invalids > 0 {
		return gqlgen.Null
	}
	return out
}

func (ec *executionContext) _Query_employees(ctx context.Context, field gqlgen.CollectedField) gqlgen.Marshaler {
	return ec.resolveField(ctx, "Query", field, true, func(ctx context.Context) (any, error) {
		return ec.es.svc.ListEmployees(ctx)
	}, func(ctx context.Context, v any) gqlgen.Marshaler {
		return ec.marshalEmployeeList(ctx, field.Selections, v.([]*employee.Employee))
	})
}

func (ec *executionContext) _Query_employee(ctx context.Context, field gqlgen.CollectedField) gqlgen.Marshaler {
	return ec.resolveField(ctx, "Query", field, true, func(ctx context.Context) (any, error) {
		id, err := ec.idArgument(field)
		if err != nil {
			return nil, err
		}
		emp, err := ec.es.svc.GetEmployee(ctx, id)
		if err != nil || emp == nil {
			return nil, err
		}
		return emp, nil
	}, ec.employeeMarshaler(field))
}

func (ec *executionContext) _Query_introspection(ctx context.Context, field gqlgen.CollectedField) gqlgen.Marshaler {
	return ec.resolveField(ctx, "Query", field, false, func(context.Context) (any, error) {
		return nil, gqlerror.Errorf("introspection disabled")
	}, nil)
}

func (ec *executionContext) _Mutation_createEmployee(ctx context.Context, field gqlgen.CollectedField) gqlgen.Marshaler {
	return ec.resolveField(ctx, "Mutation", field, true, func(ctx context.Context) (any, error) {
		in, err := ec.inputArgument(field)
		if err != nil {
			return nil, err
		}
		return ec.es.svc.CreateEmployee(ctx, in)
	}, ec.employeeMarshaler(field))
}

func (ec *executionContext) _Mutation_updateEmployee(ctx context.Context, field gqlgen.CollectedField) gqlgen.Marshaler {
	return ec.resolveField(ctx, "Mutation", field, true, func(ctx context.Context) (any, error) {
		id, err := ec.idArgument(field)
		if err != nil {
			return nil, err
		}
		in, err := ec.inputArgument(field)
		if err != nil {
			return nil, err
		}
		return ec.es.svc.UpdateEmployee(ctx, id, in)
	}, ec.employeeMarshaler(field))
}

func (ec *executionContext) _Mutation_deleteEmployee(ctx context.Context, field gqlgen.CollectedField) gqlgen.Marshaler {
	return ec.resolveField(ctx, "Mutation", field, true, func(ctx context.Context) (any, error) {
		id, err := ec.idArgument(field)
		if err != nil {
			return nil, err
		}
		return ec.es.svc.DeleteEmployee(ctx, id)
	}, ec.employeeMarshaler(field))
}

func (ec *executionContext) _Employee(ctx context.Context, sel ast.SelectionSet, obj *employee.Employee) gqlgen.Marshaler {
	fields := gqlgen.CollectFields(ec.OperationContext, sel, employeeImplementors)

	out := gqlgen.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = gqlgen.MarshalString("Employee")
		case wire.FieldID, wire.FieldFirstName, wire.FieldLastName, wire.FieldAge,
			wire.FieldTitle, wire.FieldDepartment, wire.FieldEmployeeType, wire.FieldDateOfJoining:
			out.Values[i] = ec._Employee_field(ctx, field, obj)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
		if out.Values[i] == gqlgen.Null {
			out.Invalids++
		}
	}
	out.Dispatch(ctx)
	if out.Invalids > 0 {
		return gqlgen.Null
	}
	return out
}

func (ec *executionContext) _Employee_field(ctx context.Context, field gqlgen.CollectedField, obj *employee.Employee) gqlgen.Marshaler {
	return ec.resolveField(ctx, "Employee", field, false, func(context.Context) (any, error) {
		if field.Name == wire.FieldDateOfJoining {
			return obj.DateOfJoining, nil
		}
		return wire.FieldValue(obj, field.Name), nil
	}, func(_ context.Context, v any) gqlgen.Marshaler {
		return marshalScalar(v)
	})
}

// resolveField は FieldContext を積み、ミドルウェア越しに resolve を呼んで結果を marshal で書き出します。
// resolve のエラーとパニックはフィールドのエラーとして記録され、値は null になります。
func (ec *executionContext) resolveField(
	ctx context.Context,
	object string,
	field gqlgen.CollectedField,
	isResolver bool,
	resolve gqlgen.Resolver,
	marshal func(context.Context, any) gqlgen.Marshaler,
) (ret gqlgen.Marshaler) {
	fc := &gqlgen.FieldContext{
		Object:     object,
		Field:      field,
		IsMethod:   isResolver,
		IsResolver: isResolver,
	}
	ctx = gqlgen.WithFieldContext(ctx, fc)
	defer func() {
		if r := recover(); r != nil {
			ec.Error(ctx, ec.Recover(ctx, r))
			ret = gqlgen.Null
		}
	}()

	res, err := ec.ResolverMiddleware(ctx, resolve)
	if err != nil {
		ec.Error(ctx, err)
		return gqlgen.Null
	}
	if res == nil {
		if isNonNull(field) && !gqlgen.HasFieldError(ctx, fc) {
			gqlgen.AddErrorf(ctx, "must not be null")
		}
		return gqlgen.Null
	}
	fc.Result = res
	return marshal(ctx, res)
}

func (ec *executionContext) employeeMarshaler(field gqlgen.CollectedField) func(context.Context, any) gqlgen.Marshaler {
	return func(ctx context.Context, v any) gqlgen.Marshaler {
		return ec.marshalEmployee(ctx, field.Selections, v.(*employee.Employee))
	}
}

func (ec *executionContext) marshalEmployee(ctx context.Context, sel ast.SelectionSet, v *employee.Employee) gqlgen.Marshaler {
	if v == nil {
		if fc := gqlgen.GetFieldContext(ctx); fc != nil && isNonNull(fc.Field) && !gqlgen.HasFieldError(ctx, fc) {
			gqlgen.AddErrorf(ctx, "the requested element is null which the schema does not allow")
		}
		return gqlgen.Null
	}
	return ec._Employee(ctx, sel, v)
}

// marshalEmployeeList は要素ごとに添字付きの FieldContext を積みます。要素は null を許しません。
func (ec *executionContext) marshalEmployeeList(ctx context.Context, sel ast.SelectionSet, v []*employee.Employee) gqlgen.Marshaler {
	ret := make(gqlgen.Array, len(v))
	for i := range v {
		fc := &gqlgen.FieldContext{Index: &i, Result: v[i]}
		ctx := gqlgen.WithFieldContext(ctx, fc)
		ret[i] = ec._Employee(ctx, sel, v[i])
		if ret[i] == gqlgen.Null {
			return gqlgen.Null
		}
	}
	return ret
}

func marshalScalar(v any) gqlgen.Marshaler {
	switch v := v.(type) {
	case string:
		return gqlgen.MarshalString(v)
	case int:
		return gqlgen.MarshalInt(v)
	case time.Time:
		return datescalar.MarshalDate(v)
	default:
		return gqlgen.Null
	}
}

func isNonNull(field gqlgen.CollectedField) bool {
	return field.Field != nil && field.Definition != nil && field.Definition.Type != nil && field.Definition.Type.NonNull
}
