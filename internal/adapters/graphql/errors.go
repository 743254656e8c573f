package graphql

import (
	"context"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/errcode"
	"github.com/go-faster/errors"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// extensions.code に入る値です。
const (
	CodeBadUserInput     = "BAD_USER_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodePersistenceError = "PERSISTENCE_ERROR"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
	CodeValidationFailed = errcode.ValidationFailed
	CodeParseFailed      = errcode.ParseFailed
)

func withCode(err *gqlerror.Error, code string) *gqlerror.Error {
	if err.Extensions == nil {
		err.Extensions = map[string]interface{}{}
	}
	err.Extensions["code"] = code
	return err
}

// presentError はリゾルバのエラーを種別に応じた GraphQL エラーへ変換します。
// 永続化障害と想定外のエラーは詳細を隠し、ログにだけ残します。
func (es *ExecutableSchema) presentError(ctx context.Context, err error) *gqlerror.Error {
	var gErr *gqlerror.Error
	if !errors.As(err, &gErr) {
		gErr = gqlerror.WrapPath(gqlgen.GetPath(ctx), err)
	}
	// 文書の解析や検証のエラーは gqlgen が付けたコードのまま返す。
	if gErr.Err == nil {
		return gErr
	}
	if _, ok := gErr.Extensions["code"]; ok {
		return gErr
	}

	fieldName := ""
	if fc := gqlgen.GetFieldContext(ctx); fc != nil && fc.Field.Field != nil {
		fieldName = fc.Field.Name
		if len(gErr.Locations) == 0 && fc.Field.Position != nil {
			gErr.Locations = []gqlerror.Location{{Line: fc.Field.Position.Line, Column: fc.Field.Position.Column}}
		}
	}

	cause := gErr.Err
	switch employee.KindOf(cause) {
	case employee.KindValidation:
		gErr.Message = cause.Error()
		withCode(gErr, CodeBadUserInput)
		var vErr *employee.ValidationError
		if errors.As(cause, &vErr) {
			gErr.Extensions["field"] = vErr.Field
			if len(vErr.Violations) > 1 {
				violations := make([]map[string]string, 0, len(vErr.Violations))
				for _, v := range vErr.Violations {
					violations = append(violations, map[string]string{"field": v.Field, "reason": v.Reason})
				}
				gErr.Extensions["violations"] = violations
			}
		}
	case employee.KindNotFound:
		gErr.Message = "employee not found"
		withCode(gErr, CodeNotFound)
	case employee.KindPersistence:
		gErr.Message = "employee storage is unavailable"
		withCode(gErr, CodePersistenceError)
		es.logger.WithError(cause).WithField("field", fieldName).Error("graphql resolver persistence failure")
	default:
		gErr.Message = "internal server error"
		withCode(gErr, CodeInternal)
		es.logger.WithError(cause).WithFields(logrus.Fields{"field": fieldName}).Error("graphql resolver failed")
	}
	return gErr
}

// recoverPanic はリゾルバ内のパニックをログに残し、詳細を伏せたエラーにします。
func (es *ExecutableSchema) recoverPanic(ctx context.Context, r any) error {
	entry := es.logger.WithField("panic", r)
	if fc := gqlgen.GetFieldContext(ctx); fc != nil && fc.Field.Field != nil {
		entry = entry.WithField("field", fc.Field.Name)
	}
	entry.Error("graphql resolver panic")
	return withCode(gqlerror.Errorf("internal server error"), CodeInternal)
}
