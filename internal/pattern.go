package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// RePath is a compiled route template. A template mixes literal text with
// {name} placeholders; each placeholder matches exactly one path segment.
// Compilation happens once at registration, matching is a single regexp run.
type RePath struct {
	template string
	re       *regexp.Regexp
	parts    []pathPart
	names    []string
}

// pathPart is one piece of a parsed template: literal text, or a placeholder
// identified by name. An empty placeholder name marks the {} no-op segment.
type pathPart struct {
	text        string
	placeholder bool
}

// hasPlaceholders reports whether a pattern contains '{' and therefore
// registers on the pattern router instead of the exact router.
func hasPlaceholders(pattern string) bool {
	return strings.Contains(pattern, "{")
}

// CompilePath parses and compiles a route template.
//
// Rules:
//   - {name} becomes a named capture matching one path segment ([^/]+);
//   - a '{' must directly follow '/';
//   - {} is a literal no-op, it captures nothing and renders to nothing;
//   - literal text matches verbatim and the whole template is anchored, so
//     a prefix match is not a match.
func CompilePath(template string) (*RePath, error) {
	parts, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}

	var expr strings.Builder
	var names []string
	expr.WriteByte('^')
	for _, part := range parts {
		switch {
		case !part.placeholder:
			expr.WriteString(regexp.QuoteMeta(part.text))
		case part.text == "":
		default:
			fmt.Fprintf(&expr, "(?P<%s>[^/]+)", part.text)
			names = append(names, part.text)
		}
	}
	expr.WriteByte('$')

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}

	return &RePath{
		template: template,
		re:       re,
		parts:    parts,
		names:    names,
	}, nil
}

// parseTemplate splits a template into literal and placeholder parts.
func parseTemplate(template string) ([]pathPart, error) {
	var parts []pathPart
	var lit strings.Builder

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '{' {
			lit.WriteByte(c)
			continue
		}
		if i == 0 || template[i-1] != '/' {
			return nil, fmt.Errorf("%w: char before '{' must be '/'", ErrBadPattern)
		}
		end := strings.IndexByte(template[i:], '}')
		if end < 0 {
			return nil, fmt.Errorf("%w: unclosed '{'", ErrBadPattern)
		}
		name := template[i+1 : i+end]
		if !validPlaceholderName(name) {
			return nil, fmt.Errorf("%w: invalid placeholder name %q", ErrBadPattern, name)
		}
		if lit.Len() > 0 {
			parts = append(parts, pathPart{text: lit.String()})
			lit.Reset()
		}
		parts = append(parts, pathPart{text: name, placeholder: true})
		i += end
	}
	if lit.Len() > 0 {
		parts = append(parts, pathPart{text: lit.String()})
	}

	return parts, nil
}

// validPlaceholderName accepts ASCII letters, digits, and underscores.
// The empty name is valid too, it denotes the {} no-op segment.
func validPlaceholderName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

// Match tests path against the compiled template. On success it returns the
// placeholder name to captured segment map.
func (p *RePath) Match(path string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(p.names))
	for i, name := range p.re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = m[i]
	}
	return params, true
}

// Fill substitutes placeholder values into the template. Every placeholder
// must receive a value, every supplied key must correspond to a placeholder,
// and values may not contain substitution delimiters. The {} no-op segment
// renders to the empty string.
func (p *RePath) Fill(args map[string]string) (string, error) {
	var b strings.Builder
	seen := make(map[string]bool, len(args))

	for _, part := range p.parts {
		if !part.placeholder {
			b.WriteString(part.text)
			continue
		}
		if part.text == "" {
			continue
		}
		v, ok := args[part.text]
		if !ok {
			return "", fmt.Errorf("no value for placeholder %q in %q", part.text, p.template)
		}
		if strings.ContainsAny(v, "{}") {
			return "", fmt.Errorf("value %q for placeholder %q contains a brace", v, part.text)
		}
		seen[part.text] = true
		b.WriteString(v)
	}

	for k := range args {
		if !seen[k] {
			return "", fmt.Errorf("unexpected key %q for %q", k, p.template)
		}
	}

	return b.String(), nil
}

// Names returns the placeholder names in template order.
func (p *RePath) Names() []string {
	return p.names
}

// String returns the original template.
func (p *RePath) String() string {
	return p.template
}
