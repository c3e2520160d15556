package template

import (
	"strconv"
	"strings"
)

type nodeKind int

const (
	textNode nodeKind = iota
	exprNode
)

type node struct {
	kind   nodeKind
	text   string
	offset int
	raw    bool
	args   []arg
}

type argKind int

const (
	argPath argKind = iota
	argString
	argNumber
	argBool
)

type arg struct {
	kind argKind
	path []string
	str  string
	num  float64
	b    bool
}

func (a arg) name() string {
	return strings.Join(a.path, ".")
}

// Template is a parsed template, safe to execute concurrently.
type Template struct {
	nodes []node
}

// Parse parses src. Syntax errors are returned as *Error.
func Parse(src string) (*Template, error) {
	t := &Template{}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			t.nodes = append(t.nodes, node{kind: textNode, text: text.String()})
			text.Reset()
		}
	}

	i := 0
	for i < len(src) {
		j := strings.Index(src[i:], "{{")
		if j < 0 {
			text.WriteString(src[i:])
			break
		}
		start := i + j

		// \{{ is a literal {{
		if start > 0 && src[start-1] == '\\' {
			text.WriteString(src[i : start-1])
			text.WriteString("{{")
			i = start + 2
			continue
		}
		text.WriteString(src[i:start])

		open, closing := "{{", "}}"
		raw := strings.HasPrefix(src[start:], "{{{")
		if raw {
			open, closing = "{{{", "}}}"
		}
		bodyStart := start + len(open)

		if !raw && strings.HasPrefix(src[bodyStart:], "!--") {
			end := strings.Index(src[bodyStart:], "--}}")
			if end < 0 {
				return nil, errorf(start, "unclosed comment")
			}
			i = bodyStart + end + len("--}}")
			continue
		}

		end := strings.Index(src[bodyStart:], closing)
		if end < 0 {
			return nil, errorf(start, "unclosed %q", open)
		}
		body := src[bodyStart : bodyStart+end]
		i = bodyStart + end + len(closing)

		if strings.Contains(body, "{{") {
			return nil, errorf(start, "unexpected \"{{\" inside expression")
		}
		expr := strings.TrimSpace(body)
		if strings.HasPrefix(expr, "!") {
			continue
		}
		if expr == "" {
			return nil, errorf(start, "empty expression")
		}
		switch expr[0] {
		case '#', '/', '^', '>':
			return nil, errorf(start, "block helpers and partials are not supported: %q", expr)
		}

		args, err := tokenize(expr, start)
		if err != nil {
			return nil, err
		}
		flush()
		t.nodes = append(t.nodes, node{kind: exprNode, offset: start, raw: raw, args: args})
	}
	flush()
	return t, nil
}

// tokenize splits an expression into whitespace separated arguments,
// keeping quoted strings intact.
func tokenize(expr string, offset int) ([]arg, error) {
	var args []arg
	i := 0
	for i < len(expr) {
		c := expr[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}
		if c == '"' || c == '\'' {
			end := strings.IndexByte(expr[i+1:], c)
			if end < 0 {
				return nil, errorf(offset, "unterminated string in %q", expr)
			}
			args = append(args, arg{kind: argString, str: expr[i+1 : i+1+end]})
			i += end + 2
			continue
		}
		j := i
		for j < len(expr) && !strings.ContainsRune(" \t\n\r", rune(expr[j])) {
			j++
		}
		a, err := parseToken(expr[i:j], offset)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		i = j
	}
	if len(args) == 0 {
		return nil, errorf(offset, "empty expression")
	}
	return args, nil
}

func parseToken(tok string, offset int) (arg, error) {
	switch tok {
	case "true":
		return arg{kind: argBool, b: true}, nil
	case "false":
		return arg{kind: argBool}, nil
	}
	if c := tok[0]; c == '-' || (c >= '0' && c <= '9') {
		if n, err := strconv.ParseFloat(tok, 64); err == nil {
			return arg{kind: argNumber, num: n}, nil
		}
	}

	tok = strings.TrimSuffix(tok, "()")
	tok = strings.TrimPrefix(tok, "this.")
	if strings.ContainsAny(tok, "\"'(){}=") {
		return arg{}, errorf(offset, "invalid expression %q", tok)
	}
	parts := strings.Split(tok, ".")
	for i, p := range parts {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "["), "]")
		if p == "" {
			return arg{}, errorf(offset, "invalid path %q", tok)
		}
		parts[i] = p
	}
	return arg{kind: argPath, path: parts}, nil
}
