package handler

import (
	"github.com/go-faster/errors"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch employee.KindOf(err) {
	case employee.KindValidation:
		return invalidArgument(err)
	case employee.KindNotFound:
		return status.Error(codes.NotFound, "employee not found")
	case employee.KindPersistence:
		return status.Error(codes.Unavailable, "employee storage is unavailable")
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// invalidArgument は違反フィールドを BadRequest の詳細として添付します。
func invalidArgument(err error) error {
	st := status.New(codes.InvalidArgument, err.Error())

	var vErr *employee.ValidationError
	if !errors.As(err, &vErr) {
		return st.Err()
	}

	violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(vErr.Violations))
	for _, v := range vErr.Violations {
		violations = append(violations, &errdetails.BadRequest_FieldViolation{Field: v.Field, Description: v.Reason})
	}
	detailed, detailErr := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}
