package schema

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// ErrIncompatible is returned when no rule of the compatibility table converts a value.
var ErrIncompatible = errors.New("incompatible types")

var (
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	bytesType   = reflect.TypeOf([]byte(nil))
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	valuerType  = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
)

// timeLayouts are tried in order when a driver returns a timestamp as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Convert returns value as a reflect.Value of type target.
//
// The compatibility table is deliberately small:
//   - nil becomes the zero value (a nil pointer for pointer targets)
//   - assignable values are used as-is
//   - pointer sources are dereferenced; pointer targets are allocated
//   - driver.Valuer sources (sql.Null* and friends) are unwrapped first
//   - integers convert between widths and signedness when the value fits
//   - integers and float32 widen to float32/float64
//   - integers 0 and 1 become bool
//   - string and []byte convert into each other
//   - string and []byte parse into time.Time and uuid.UUID
//   - any target whose pointer implements sql.Scanner scans the value
//
// Everything else fails with ErrIncompatible.
func Convert(value any, target reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(target), nil
	}

	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(target), nil
		}
		if v.Type().AssignableTo(target) {
			return v, nil
		}
		v = v.Elem()
	}

	if v.Type().AssignableTo(target) {
		return v, nil
	}

	if target.Kind() == reflect.Pointer {
		inner, err := Convert(v.Interface(), target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(inner)
		return p, nil
	}

	if v.Type().Implements(valuerType) {
		dv, err := v.Interface().(driver.Valuer).Value()
		if err != nil {
			return reflect.Value{}, err
		}
		return Convert(dv, target)
	}

	if out, ok, err := convertKind(v, target); ok || err != nil {
		return out, err
	}

	if reflect.PointerTo(target).Implements(scannerType) {
		p := reflect.New(target)
		if err := p.Interface().(sql.Scanner).Scan(v.Interface()); err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrIncompatible, err)
		}
		return p.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrIncompatible, v.Type(), target)
}

func convertKind(v reflect.Value, target reflect.Type) (reflect.Value, bool, error) {
	out := reflect.New(target).Elem()

	switch {
	case isInt(v.Kind()) && isInt(target.Kind()):
		if !fitsInt(v, target) {
			return reflect.Value{}, false, fmt.Errorf("%w: %v overflows %s", ErrIncompatible, v.Interface(), target)
		}
		out.Set(v.Convert(target))
		return out, true, nil

	case isFloat(target.Kind()) && (isInt(v.Kind()) || v.Kind() == reflect.Float32):
		out.Set(v.Convert(target))
		return out, true, nil

	case target.Kind() == reflect.Bool && isInt(v.Kind()):
		n, ok := intValue(v)
		if !ok || (n != 0 && n != 1) {
			return reflect.Value{}, false, fmt.Errorf("%w: %v is not a boolean", ErrIncompatible, v.Interface())
		}
		out.SetBool(n == 1)
		return out, true, nil

	case target.Kind() == reflect.String && isBytes(v.Type()):
		out.SetString(string(v.Bytes()))
		return out, true, nil

	case isBytes(target) && v.Kind() == reflect.String:
		out.SetBytes([]byte(v.String()))
		return out, true, nil

	case target == timeType && (v.Kind() == reflect.String || isBytes(v.Type())):
		t, err := parseTime(text(v))
		if err != nil {
			return reflect.Value{}, false, err
		}
		out.Set(reflect.ValueOf(t))
		return out, true, nil

	case target == uuidType && (v.Kind() == reflect.String || isBytes(v.Type())):
		id, err := parseUUID(v)
		if err != nil {
			return reflect.Value{}, false, fmt.Errorf("%w: %v", ErrIncompatible, err)
		}
		out.Set(reflect.ValueOf(id))
		return out, true, nil
	}
	return reflect.Value{}, false, nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return string(v.Bytes())
}

// intValue returns v as int64; ok is false for uint64 values above MaxInt64.
func intValue(v reflect.Value) (int64, bool) {
	if v.Kind() >= reflect.Uint && v.Kind() <= reflect.Uint64 {
		u := v.Uint()
		return int64(u), u <= 1<<63-1
	}
	return v.Int(), true
}

func fitsInt(v reflect.Value, target reflect.Type) bool {
	limit := reflect.New(target).Elem()
	signedTarget := target.Kind() <= reflect.Int64
	signedSource := v.Kind() <= reflect.Int64

	switch {
	case signedSource && signedTarget:
		return !limit.OverflowInt(v.Int())
	case signedSource:
		return v.Int() >= 0 && !limit.OverflowUint(uint64(v.Int()))
	case signedTarget:
		n, ok := intValue(v)
		return ok && !limit.OverflowInt(n)
	default:
		return !limit.OverflowUint(v.Uint())
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q as time", ErrIncompatible, s)
}

func parseUUID(v reflect.Value) (uuid.UUID, error) {
	if v.Kind() == reflect.String {
		return uuid.Parse(v.String())
	}
	b := v.Bytes()
	if len(b) == 16 {
		return uuid.FromBytes(b)
	}
	return uuid.ParseBytes(b)
}
