package teloquent

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/jinzhu/now"
	"github.com/spf13/cast"

	"github.com/teloquent/teloquent/clause"
	"github.com/teloquent/teloquent/utils"
)

// CastType attribute conversion applied on assignment
type CastType string

const (
	CastInt     CastType = "int"
	CastInteger CastType = "integer"
	CastFloat   CastType = "float"
	CastDouble  CastType = "double"
	CastBool    CastType = "bool"
	CastBoolean CastType = "boolean"
	CastString  CastType = "string"
	CastArray   CastType = "array"
	CastObject  CastType = "object"
	CastDate    CastType = "date"
)

// TimestampLayout ISO-8601 UTC with milliseconds, used for created_at and updated_at
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// castValue converts value per castType. nil stays nil, unknown cast types pass the value through.
func castValue(castType CastType, value interface{}) interface{} {
	if value == nil {
		return nil
	}

	switch castType {
	case CastInt, CastInteger:
		if i, err := cast.ToInt64E(value); err == nil {
			return i
		}
		if f, err := cast.ToFloat64E(value); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
		return int64(0)
	case CastFloat, CastDouble:
		if f, err := cast.ToFloat64E(value); err == nil {
			return f
		}
		return float64(0)
	case CastBool, CastBoolean:
		if b, err := cast.ToBoolE(value); err == nil {
			return b
		}
		if s, ok := value.(string); ok {
			return utils.CheckTruth(s)
		}
		return !reflect.ValueOf(value).IsZero()
	case CastString:
		if s, err := cast.ToStringE(value); err == nil {
			return s
		}
		return fmt.Sprint(value)
	case CastArray:
		return castArray(value)
	case CastObject:
		return castObject(value)
	case CastDate:
		return castDate(value)
	}
	return value
}

func castArray(value interface{}) []interface{} {
	var raw []byte
	switch v := value.(type) {
	case []interface{}:
		return v
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		if kind := reflect.ValueOf(value).Kind(); kind == reflect.Slice || kind == reflect.Array {
			return clause.Values(value)
		}
		return []interface{}{value}
	}

	var values []interface{}
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return []interface{}{}
	}
	return values
}

func castObject(value interface{}) map[string]interface{} {
	var raw []byte
	switch v := value.(type) {
	case map[string]interface{}:
		return v
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		if obj, err := cast.ToStringMapE(value); err == nil {
			return obj
		}
		return map[string]interface{}{}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return map[string]interface{}{}
	}
	return obj
}

// castDate parses strings (RFC 3339 first, then the layouts jinzhu/now understands) and treats
// numbers as unix milliseconds. Unparseable values are kept as given.
func castDate(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v == nil {
			return nil
		}
		return *v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := now.Parse(v); err == nil {
			return t
		}
		return value
	}

	if ms, err := cast.ToInt64E(value); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return value
}
