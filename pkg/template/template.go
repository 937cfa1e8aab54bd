// Package template implements the small template language used for
// plugin snippets. The grammar is deliberately closed: `{{ ident }}`
// substitutions and a single non-nested `{% for ident in ident %} ...
// {% endfor %}` loop over a list variable. Rendering is a pure function
// from (template, variables) to string.
package template

import (
	"strings"

	"github.com/plugman-sh/plugman/pkg/errors"
)

// Vars holds the variables available during rendering. Values are
// either string or []string; a []string may only be consumed by a for
// loop.
type Vars map[string]interface{}

// Template is a compiled template ready for rendering
type Template struct {
	nodes []node
}

type node interface{}

// textNode is a literal run of text
type textNode string

// varNode substitutes a string variable
type varNode string

// forNode renders its body once per element of a list variable, with
// the loop variable bound to the element
type forNode struct {
	loopVar string
	listVar string
	body    []node
}

const (
	openVar  = "{{"
	closeVar = "}}"
	openTag  = "{%"
	closeTag = "%}"
)

// Parse compiles a template source string
func Parse(src string) (*Template, error) {
	p := &parser{src: src}
	nodes, err := p.parse(false)
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes}, nil
}

// Render evaluates a template against the given variables
func (t *Template) Render(vars Vars) (string, error) {
	var b strings.Builder
	if err := renderNodes(&b, t.nodes, vars); err != nil {
		return "", err
	}
	return b.String(), nil
}

// HasLoop reports whether the template contains a for loop
func (t *Template) HasLoop() bool {
	for _, n := range t.nodes {
		if _, ok := n.(forNode); ok {
			return true
		}
	}
	return false
}

// Render is a convenience that parses and renders in one step
func Render(src string, vars Vars) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}

// CompileTable compiles a name to source mapping into a name to
// template mapping, failing on the first template that does not parse
func CompileTable(sources map[string]string) (map[string]*Template, error) {
	compiled := make(map[string]*Template, len(sources))
	for name, src := range sources {
		t, err := Parse(src)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTemplateParse, "failed to compile template %q", name)
		}
		compiled[name] = t
	}
	return compiled, nil
}

type parser struct {
	src string
	pos int
}

// parse consumes nodes until end of input, or until the matching
// endfor tag when inFor is true. Loops may not nest.
func (p *parser) parse(inFor bool) ([]node, error) {
	var nodes []node
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		iv := strings.Index(rest, openVar)
		it := strings.Index(rest, openTag)

		// No more constructs: the rest is literal text
		if iv < 0 && it < 0 {
			nodes = append(nodes, textNode(rest))
			p.pos = len(p.src)
			break
		}

		// Take whichever construct appears first
		i, isTag := iv, false
		if iv < 0 || (it >= 0 && it < iv) {
			i, isTag = it, true
		}
		if i > 0 {
			nodes = append(nodes, textNode(rest[:i]))
			p.pos += i
			rest = p.src[p.pos:]
		}

		if !isTag {
			end := strings.Index(rest, closeVar)
			if end < 0 {
				return nil, errors.New(errors.ErrTemplateParse, "unterminated variable, missing }}")
			}
			name := strings.TrimSpace(rest[len(openVar):end])
			if !isIdent(name) {
				return nil, errors.Newf(errors.ErrTemplateParse, "invalid variable name %q", name)
			}
			nodes = append(nodes, varNode(name))
			p.pos += end + len(closeVar)
			continue
		}

		end := strings.Index(rest, closeTag)
		if end < 0 {
			return nil, errors.New(errors.ErrTemplateParse, "unterminated tag, missing %}")
		}
		fields := strings.Fields(rest[len(openTag):end])
		p.pos += end + len(closeTag)

		switch {
		case len(fields) == 1 && fields[0] == "endfor":
			if !inFor {
				return nil, errors.New(errors.ErrTemplateParse, "{% endfor %} without matching {% for %}")
			}
			return nodes, nil

		case len(fields) == 4 && fields[0] == "for" && fields[2] == "in":
			if inFor {
				return nil, errors.New(errors.ErrTemplateParse, "nested for loops are not supported")
			}
			loopVar, listVar := fields[1], fields[3]
			if !isIdent(loopVar) || !isIdent(listVar) {
				return nil, errors.Newf(errors.ErrTemplateParse, "invalid for loop variables %q in %q", loopVar, listVar)
			}
			body, err := p.parse(true)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, forNode{loopVar: loopVar, listVar: listVar, body: body})

		default:
			return nil, errors.Newf(errors.ErrTemplateParse, "malformed tag {%% %s %%}", strings.Join(fields, " "))
		}
	}
	if inFor {
		return nil, errors.New(errors.ErrTemplateParse, "unterminated for loop, missing {% endfor %}")
	}
	return nodes, nil
}

func renderNodes(b *strings.Builder, nodes []node, vars Vars) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			b.WriteString(string(n))

		case varNode:
			v, ok := vars[string(n)]
			if !ok {
				return errors.Newf(errors.ErrTemplateRender, "unresolved variable %q", string(n))
			}
			s, ok := v.(string)
			if !ok {
				return errors.Newf(errors.ErrTemplateRender, "variable %q is a list, expected a string", string(n))
			}
			b.WriteString(s)

		case forNode:
			v, ok := vars[n.listVar]
			if !ok {
				return errors.Newf(errors.ErrTemplateRender, "unresolved variable %q", n.listVar)
			}
			list, ok := v.([]string)
			if !ok {
				return errors.Newf(errors.ErrTemplateRender, "variable %q is not a list", n.listVar)
			}
			for _, item := range list {
				scoped := make(Vars, len(vars)+1)
				for k, val := range vars {
					scoped[k] = val
				}
				scoped[n.loopVar] = item
				if err := renderNodes(b, n.body, scoped); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
