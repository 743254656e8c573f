// Package datescalar は API 境界における Date スカラーの変換を提供します。
//
// 入力は文字列 (値形式) または整数リテラル (リテラル形式)、出力は常にエポックミリ秒です。
// 入力と出力の形が異なるのは既存クライアントとの互換のためで、テストで固定しています。
package datescalar

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/go-faster/errors"
	"github.com/vektah/gqlparser/v2/ast"
)

// Name は GraphQL スキーマ上のスカラー名です。
const Name = "Date"

const dateLayout = "2006-01-02"

// エポックミリ秒として受け付ける範囲です。
const maxEpochMillis = 8_640_000_000_000_000

// 暦日として受け付ける年の範囲です。
const (
	minYear = 1
	maxYear = 9999
)

var textLayouts = []string{
	dateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ErrInvalidDate は値形式の入力を日付として解釈できない場合に返されます。
var ErrInvalidDate = errors.New("date: invalid value")

// ParseValue は変数などで渡された値形式の日付を解釈します。
// テキストに加え、整数値はエポックミリ秒として受け付けます。
func ParseValue(v any) (time.Time, error) {
	switch value := v.(type) {
	case string:
		return parseText(value)
	case json.Number:
		ms, err := value.Int64()
		if err != nil {
			return time.Time{}, errors.Wrapf(ErrInvalidDate, "number %s", value.String())
		}
		return fromMillis(ms)
	case int:
		return fromMillis(int64(value))
	case int32:
		return fromMillis(int64(value))
	case int64:
		return fromMillis(value)
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
			return time.Time{}, errors.Wrapf(ErrInvalidDate, "number %v", value)
		}
		if math.Abs(value) > maxEpochMillis {
			return time.Time{}, errors.Wrapf(ErrInvalidDate, "number %v out of range", value)
		}
		return fromMillis(int64(value))
	case time.Time:
		return inCalendarRange(value)
	default:
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "unsupported type %T", v)
	}
}

// UnmarshalDate は gqlgen のスカラー規約に沿った ParseValue です。
func UnmarshalDate(v any) (time.Time, error) {
	return ParseValue(v)
}

// Serialize は日付をエポックミリ秒に変換します。
func Serialize(t time.Time) int64 {
	return t.UnixMilli()
}

// MarshalDate は日付をエポックミリ秒の整数として書き出します。
func MarshalDate(t time.Time) graphql.Marshaler {
	return graphql.MarshalInt64(Serialize(t))
}

// ParseLiteral はクエリ本文に直接書かれたリテラルを解釈します。
// 整数リテラル以外と範囲外の値は受け付けず、ok=false を返します。
func ParseLiteral(v *ast.Value) (time.Time, bool) {
	if v == nil || v.Kind != ast.IntValue {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	t, err := fromMillis(ms)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseText(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, errors.Wrap(ErrInvalidDate, "empty string")
	}
	for _, layout := range textLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return inCalendarRange(t)
		}
	}
	return time.Time{}, errors.Wrapf(ErrInvalidDate, "text %q, expected YYYY-MM-DD", raw)
}

func fromMillis(ms int64) (time.Time, error) {
	if ms > maxEpochMillis || ms < -maxEpochMillis {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "epoch millis %d out of range", ms)
	}
	return inCalendarRange(time.UnixMilli(ms).UTC())
}

// inCalendarRange は UTC に揃えた日付が西暦 1 年から 9999 年に収まるか確認します。
func inCalendarRange(t time.Time) (time.Time, error) {
	utc := t.UTC()
	if y := utc.Year(); y < minYear || y > maxYear {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "year %d out of range", y)
	}
	return t, nil
}
