package template

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// HelperFunc implements a {{helper arg ...}} call. Returned errors that
// are not *Error are wrapped into one.
type HelperFunc func(ctx *Context, args []any) (any, error)

var builtinHelpers = map[string]HelperFunc{
	"upper":        helperUpper,
	"lower":        helperLower,
	"capitalize":   helperCapitalize,
	"trim":         helperTrim,
	"default":      helperDefault,
	"json":         helperJSON,
	"length":       helperLength,
	"concat":       helperConcat,
	"uuid":         helperUUID,
	"timestamp":    helperTimestamp,
	"date":         helperDate,
	"randomInt":    helperRandomInt,
	"randomFloat":  helperRandomFloat,
	"randomString": helperRandomString,
}

func arity(args []any, minArgs, maxArgs int) error {
	if len(args) < minArgs || (maxArgs >= 0 && len(args) > maxArgs) {
		if maxArgs < 0 {
			return fmt.Errorf("expects at least %d argument(s), got %d", minArgs, len(args))
		}
		if minArgs == maxArgs {
			return fmt.Errorf("expects %d argument(s), got %d", minArgs, len(args))
		}
		return fmt.Errorf("expects %d to %d arguments, got %d", minArgs, maxArgs, len(args))
	}
	return nil
}

func helperUpper(_ *Context, args []any) (any, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}
	return strings.ToUpper(Stringify(args[0])), nil
}

func helperLower(_ *Context, args []any) (any, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}
	return strings.ToLower(Stringify(args[0])), nil
}

func helperCapitalize(_ *Context, args []any) (any, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}
	s := Stringify(args[0])
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s, nil
	}
	return string(unicode.ToUpper(r)) + s[size:], nil
}

func helperTrim(_ *Context, args []any) (any, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}
	return strings.TrimSpace(Stringify(args[0])), nil
}

// helperDefault returns the first argument that renders non-empty.
func helperDefault(_ *Context, args []any) (any, error) {
	if err := arity(args, 2, -1); err != nil {
		return nil, err
	}
	for _, a := range args {
		if Stringify(a) != "" {
			return a, nil
		}
	}
	return "", nil
}

// helperJSON renders its argument as a JSON literal, so strings come out
// quoted and escaped.
func helperJSON(_ *Context, args []any) (any, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := args[0].(string); ok {
		return strconv.Quote(s), nil
	}
	if args[0] == nil {
		return "null", nil
	}
	return Stringify(args[0]), nil
}

func helperLength(_ *Context, args []any) (any, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case []any:
		return len(v), nil
	case map[string]any:
		return len(v), nil
	case map[string]string:
		return len(v), nil
	case nil:
		return 0, nil
	}
	return utf8.RuneCountInString(Stringify(args[0])), nil
}

func helperConcat(_ *Context, args []any) (any, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(Stringify(a))
	}
	return b.String(), nil
}

func helperUUID(ctx *Context, args []any) (any, error) {
	if err := arity(args, 0, 0); err != nil {
		return nil, err
	}
	return rngUUID(ctxRNG(ctx)), nil
}

// helperTimestamp returns the context time as Unix milliseconds.
func helperTimestamp(ctx *Context, args []any) (any, error) {
	if err := arity(args, 0, 0); err != nil {
		return nil, err
	}
	return ctxNow(ctx).UnixMilli(), nil
}

// helperDate formats the context time with a Go layout, or RFC3339 when no
// layout is given.
func helperDate(ctx *Context, args []any) (any, error) {
	if err := arity(args, 0, 1); err != nil {
		return nil, err
	}
	layout := time.RFC3339
	if len(args) == 1 {
		layout = Stringify(args[0])
	}
	return ctxNow(ctx).UTC().Format(layout), nil
}

func helperRandomInt(ctx *Context, args []any) (any, error) {
	if err := arity(args, 0, 2); err != nil {
		return nil, err
	}
	lo, hi := 0, 100
	if len(args) == 2 {
		var err error
		if lo, err = toInt(args[0]); err != nil {
			return nil, err
		}
		if hi, err = toInt(args[1]); err != nil {
			return nil, err
		}
	} else if len(args) == 1 {
		return nil, fmt.Errorf("expects 0 or 2 arguments, got 1")
	}
	return randomInt(ctxRNG(ctx), lo, hi)
}

func helperRandomFloat(ctx *Context, args []any) (any, error) {
	if err := arity(args, 0, 3); err != nil {
		return nil, err
	}
	lo, hi, precision := 0.0, 1.0, 2
	if len(args) >= 2 {
		var err error
		if lo, err = toFloat(args[0]); err != nil {
			return nil, err
		}
		if hi, err = toFloat(args[1]); err != nil {
			return nil, err
		}
	}
	if len(args) == 3 {
		p, err := toInt(args[2])
		if err != nil {
			return nil, err
		}
		precision = p
	}
	if lo > hi {
		return nil, fmt.Errorf("min %v is greater than max %v", lo, hi)
	}
	v := lo + rngFloat64(ctxRNG(ctx))*(hi-lo)
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale, nil
}

func helperRandomString(ctx *Context, args []any) (any, error) {
	if err := arity(args, 0, 1); err != nil {
		return nil, err
	}
	n := 10
	if len(args) == 1 {
		var err error
		if n, err = toInt(args[0]); err != nil {
			return nil, err
		}
	}
	return randomAlphanumeric(ctxRNG(ctx), n), nil
}

func (e *Engine) helperSequence(_ *Context, args []any) (any, error) {
	if err := arity(args, 1, 2); err != nil {
		return nil, err
	}
	start := int64(1)
	if len(args) == 2 {
		n, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		start = int64(n)
	}
	return e.sequences.Next(Stringify(args[0]), start), nil
}

func ctxNow(ctx *Context) time.Time {
	if ctx == nil || ctx.Now.IsZero() {
		return time.Now()
	}
	return ctx.Now
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case float64:
		return int(x), nil
	case int:
		return x, nil
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}
