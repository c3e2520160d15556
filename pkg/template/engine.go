package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Engine renders templates. It is safe for concurrent use; the sequence
// store provides its own synchronization.
type Engine struct {
	sequences *SequenceStore
	helpers   map[string]HelperFunc
}

// New creates a template engine with the built-in helpers and a fresh
// sequence store.
func New() *Engine {
	return NewWithSequences(NewSequenceStore())
}

// NewWithSequences creates a template engine backed by store for
// {{sequence "name"}} expressions.
func NewWithSequences(store *SequenceStore) *Engine {
	e := &Engine{sequences: store, helpers: make(map[string]HelperFunc)}
	for name, fn := range builtinHelpers {
		e.helpers[name] = fn
	}
	e.helpers["sequence"] = e.helperSequence
	return e
}

// Register adds or replaces a helper.
func (e *Engine) Register(name string, fn HelperFunc) {
	e.helpers[name] = fn
}

// Process parses and renders src with ctx.
func (e *Engine) Process(src string, ctx *Context) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return e.Execute(t, ctx)
}

// Execute renders a parsed template.
func (e *Engine) Execute(t *Template, ctx *Context) (string, error) {
	if ctx == nil {
		ctx = &Context{}
	}
	var b strings.Builder
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.kind == textNode {
			b.WriteString(n.text)
			continue
		}
		v, err := e.evalNode(n, ctx)
		if err != nil {
			return "", err
		}
		s := Stringify(v)
		if ctx.EscapeHTML && !n.raw {
			s = escapeHTML(s)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func (e *Engine) evalNode(n *node, ctx *Context) (any, error) {
	head := n.args[0]
	if len(n.args) == 1 {
		return e.evalArg(head, ctx, n.offset)
	}
	if head.kind != argPath {
		return nil, errorf(n.offset, "expected a helper name, got a literal")
	}

	args := make([]any, 0, len(n.args)-1)
	for _, a := range n.args[1:] {
		v, err := e.evalArg(a, ctx, n.offset)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if isFakerPath(head.path) {
		return generateFake(head.path[1:], ctxRNG(ctx), args, n.offset)
	}
	name := head.name()
	fn, ok := e.helpers[name]
	if !ok {
		return nil, errorf(n.offset, "missing helper %q", name)
	}
	return callHelper(name, fn, ctx, args, n.offset)
}

func (e *Engine) evalArg(a arg, ctx *Context, offset int) (any, error) {
	switch a.kind {
	case argString:
		return a.str, nil
	case argNumber:
		return a.num, nil
	case argBool:
		return a.b, nil
	}

	if isFakerPath(a.path) {
		return generateFake(a.path[1:], ctxRNG(ctx), nil, offset)
	}
	if len(a.path) == 1 && !isRoot(a.path[0]) {
		if fn, ok := e.helpers[a.path[0]]; ok {
			return callHelper(a.path[0], fn, ctx, nil, offset)
		}
	}
	v, _ := ctx.lookup(a.path)
	return v, nil
}

func callHelper(name string, fn HelperFunc, ctx *Context, args []any, offset int) (any, error) {
	v, err := fn(ctx, args)
	if err != nil {
		var te *Error
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, errorf(offset, "%s: %v", name, err)
	}
	return v, nil
}

func isFakerPath(path []string) bool {
	return len(path) > 0 && path[0] == "faker"
}

// Stringify renders a value the way templates print it: strings as-is,
// numbers without trailing zeros, nil as empty, and objects or arrays as
// compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
