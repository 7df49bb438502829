package xmlpath

import (
	"fmt"
	"strings"
)

// LanguagePlaceholder is replaced by a language code in [Template.Build].
const LanguagePlaceholder = "{language}"

// Predicate filters the nodes selected by a step.
type Predicate struct {
	Attribute bool   // test an attribute instead of a child element
	Prefix    string // namespace prefix, "" when unqualified
	Name      string // local name
	Value     string // compared value, only meaningful when HasValue is set
	HasValue  bool
}

// Step is one location step of a path.
type Step struct {
	Attribute  bool // select an attribute; only valid as the last step
	Prefix     string
	Name       string
	Predicates []Predicate
}

// Template is a parsed, not yet qualified path.
type Template struct {
	raw   string
	steps []Step
}

// ParseTemplate parses a path template. Leading slashes are ignored since
// every built query is anchored on the descendant axis anyway.
func ParseTemplate(s string) (Template, error) {
	p := &parser{src: s}
	steps, err := p.parse()
	if err != nil {
		return Template{}, fmt.Errorf("xmlpath: %q: %w", s, err)
	}
	return Template{raw: s, steps: steps}, nil
}

// MustParseTemplate is like [ParseTemplate] but panics on error.
func MustParseTemplate(s string) Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template text as configured.
func (t Template) String() string { return t.raw }

// Steps returns a copy of the parsed steps.
func (t Template) Steps() []Step { return cloneSteps(t.steps) }

// Build substitutes language for every {language} placeholder and qualifies
// unprefixed element and attribute names with namespace. An empty namespace
// leaves names unqualified.
func (t Template) Build(namespace, language string) Query {
	steps := cloneSteps(t.steps)
	for i := range steps {
		s := &steps[i]
		if s.Prefix == "" {
			s.Prefix = namespace
		}
		for j := range s.Predicates {
			pr := &s.Predicates[j]
			if pr.Prefix == "" {
				pr.Prefix = namespace
			}
			pr.Value = strings.ReplaceAll(pr.Value, LanguagePlaceholder, language)
		}
	}
	return Query{steps: steps}
}

func cloneSteps(in []Step) []Step {
	out := make([]Step, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Predicates = append([]Predicate(nil), s.Predicates...)
	}
	return out
}

// parser is a small recursive-descent parser for the template grammar
// described in the package documentation.
type parser struct {
	src string
	pos int
}

func (p *parser) parse() ([]Step, error) {
	for p.peek() == '/' {
		p.pos++
	}
	if p.eof() {
		return nil, fmt.Errorf("empty path")
	}

	var steps []Step
	for {
		st, err := p.step()
		if err != nil {
			return nil, err
		}
		steps = append(steps, st)
		if p.eof() {
			break
		}
		if p.peek() != '/' {
			return nil, fmt.Errorf("unexpected %q at offset %d", p.peek(), p.pos)
		}
		p.pos++
		if p.peek() == '/' {
			return nil, fmt.Errorf("descendant steps (//) are not supported at offset %d", p.pos)
		}
		if steps[len(steps)-1].Attribute {
			return nil, fmt.Errorf("attribute step must be last")
		}
	}
	return steps, nil
}

func (p *parser) step() (Step, error) {
	var st Step
	if p.peek() == '@' {
		st.Attribute = true
		p.pos++
	}
	prefix, name, err := p.qname()
	if err != nil {
		return st, err
	}
	st.Prefix, st.Name = prefix, name
	for p.peek() == '[' {
		pr, err := p.predicate()
		if err != nil {
			return st, err
		}
		st.Predicates = append(st.Predicates, pr)
	}
	return st, nil
}

func (p *parser) predicate() (Predicate, error) {
	var pr Predicate
	p.pos++ // [
	p.skipSpace()
	if p.peek() == '@' {
		pr.Attribute = true
		p.pos++
	}
	prefix, name, err := p.qname()
	if err != nil {
		return pr, err
	}
	pr.Prefix, pr.Name = prefix, name
	p.skipSpace()
	if p.peek() == '=' {
		p.pos++
		p.skipSpace()
		v, err := p.quoted()
		if err != nil {
			return pr, err
		}
		pr.Value, pr.HasValue = v, true
		p.skipSpace()
	}
	if p.peek() != ']' {
		return pr, fmt.Errorf("expected ] at offset %d", p.pos)
	}
	p.pos++
	return pr, nil
}

func (p *parser) qname() (prefix, name string, err error) {
	first := p.name()
	if first == "" {
		return "", "", fmt.Errorf("expected name at offset %d", p.pos)
	}
	if p.peek() != ':' {
		return "", first, nil
	}
	p.pos++
	second := p.name()
	if second == "" {
		return "", "", fmt.Errorf("expected local name after %q at offset %d", first+":", p.pos)
	}
	return first, second, nil
}

func (p *parser) name() string {
	start := p.pos
	for !p.eof() && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) quoted() (string, error) {
	q := p.peek()
	if q != '"' && q != '\'' {
		return "", fmt.Errorf("expected quoted value at offset %d", p.pos)
	}
	p.pos++
	end := strings.IndexByte(p.src[p.pos:], q)
	if end < 0 {
		return "", fmt.Errorf("unterminated string at offset %d", p.pos-1)
	}
	v := p.src[p.pos : p.pos+end]
	p.pos += end + 1
	return v, nil
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func isNameChar(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
