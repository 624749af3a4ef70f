package internal

import (
	"fmt"
	"strconv"
)

func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param retrieves a typed path parameter. Returns the zero value if the
// parameter is missing or cannot be parsed; use ParseParam when the failure
// must surface.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// ParseParam retrieves a typed path parameter. A missing or malformed value
// returns an error wrapping ErrParseValue, which the default error funnel
// renders as 400.
func ParseParam[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) (T, error) {
	raw := c.Param(name)
	v, ok := convertParam[T](raw)
	if !ok {
		return v, fmt.Errorf("%w: path param %q=%q", ErrParseValue, name, raw)
	}
	return v, nil
}

// Query retrieves a typed query parameter, zero value on failure.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// ParseQuery retrieves a typed query parameter; malformed values return an
// error wrapping ErrParseValue.
func ParseQuery[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) (T, error) {
	raw := c.Query(name)
	v, ok := convertParam[T](raw)
	if !ok {
		return v, fmt.Errorf("%w: query param %q=%q", ErrParseValue, name, raw)
	}
	return v, nil
}

// Form retrieves a typed form value, zero value on failure.
func Form[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	v, _ := convertParam[T](c.Form(name))
	return v
}

// FormDefault retrieves a typed form value with a default value.
func FormDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	raw := c.Form(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// ParseForm retrieves a typed form value; malformed values return an error
// wrapping ErrParseValue.
func ParseForm[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) (T, error) {
	raw := c.Form(name)
	v, ok := convertParam[T](raw)
	if !ok {
		return v, fmt.Errorf("%w: form value %q=%q", ErrParseValue, name, raw)
	}
	return v, nil
}

// convertParam converts a raw string to the target type T.
// Returns the converted value and true on success, or the zero value and false on failure.
func convertParam[T ~string | ~int | ~int64 | ~float64 | ~bool](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
