// Package ottr loads and instantiates a restricted subset of stOTTR
// template documents: prefix directives, a single template definition with
// a typed parameter list, and a body of ottr:Triple instance patterns.
//
// The parameter list doubles as the schema contract for the normalized
// input table: columns must match the declared parameters in name and
// order.
package ottr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aleksaelezovic/trigo/pkg/rdf"
)

// ParamType is the declared type of a template parameter.
type ParamType int

const (
	// TypeAuto infers the term kind from the bound value at expansion time.
	TypeAuto ParamType = iota
	TypeIRI
	TypeString
	TypeBoolean
	TypeInteger
	TypeDate
)

// Param is one declared template parameter.
type Param struct {
	Name string
	Type ParamType
}

// Argument is one slot of a triple pattern: either a parameter reference
// (Var != "") or a constant term.
type Argument struct {
	Var  string
	Term rdf.Term
}

// TriplePattern is one ottr:Triple(s, p, o) instance in the template body.
type TriplePattern struct {
	Subject   Argument
	Predicate Argument
	Object    Argument
}

// Template is a parsed stOTTR template.
type Template struct {
	IRI      string
	Params   []Param
	Patterns []TriplePattern
	prefixes map[string]string
}

// Parameters returns the declared parameter names in order.
func (t *Template) Parameters() []string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.Name
	}
	return names
}

// Parse reads a template document. Any syntax error is fatal to the
// caller's startup: a half-parsed template would map columns to the wrong
// triple slots.
func Parse(input string) (*Template, error) {
	p := &parser{input: input, length: len(input), prefixes: map[string]string{}}
	return p.parse()
}

type parser struct {
	input    string
	pos      int
	length   int
	prefixes map[string]string
}

func (p *parser) parse() (*Template, error) {
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			return nil, fmt.Errorf("template document contains no template definition")
		}
		if p.matchKeyword("@prefix") {
			if err := p.parsePrefix(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	tpl := &Template{prefixes: p.prefixes}

	iri, err := p.parseIRIRef()
	if err != nil {
		return nil, fmt.Errorf("template name: %w", err)
	}
	tpl.IRI = iri

	if err := p.expect('['); err != nil {
		return nil, err
	}
	for {
		p.skipWhitespaceAndComments()
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		tpl.Params = append(tpl.Params, param)
		p.skipWhitespaceAndComments()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}

	if err := p.expect(':'); err != nil {
		return nil, err
	}
	if err := p.expect(':'); err != nil {
		return nil, err
	}
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	for {
		p.skipWhitespaceAndComments()
		if p.peek() == '}' {
			break
		}
		pattern, err := p.parseTriplePattern()
		if err != nil {
			return nil, err
		}
		tpl.Patterns = append(tpl.Patterns, pattern)
		p.skipWhitespaceAndComments()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	p.skipWhitespaceAndComments()
	if p.peek() == '.' {
		p.pos++
	}
	p.skipWhitespaceAndComments()
	if p.pos < p.length {
		return nil, fmt.Errorf("unexpected content after template definition at offset %d", p.pos)
	}
	if len(tpl.Params) == 0 {
		return nil, fmt.Errorf("template %s declares no parameters", tpl.IRI)
	}
	if len(tpl.Patterns) == 0 {
		return nil, fmt.Errorf("template %s has an empty body", tpl.IRI)
	}
	return tpl, nil
}

// matchKeyword consumes kw at the current position if present.
func (p *parser) matchKeyword(kw string) bool {
	if strings.HasPrefix(p.input[p.pos:], kw) {
		p.pos += len(kw)
		return true
	}
	return false
}

func (p *parser) parsePrefix() error {
	p.skipWhitespaceAndComments()
	colon := strings.IndexByte(p.input[p.pos:], ':')
	if colon < 0 {
		return fmt.Errorf("malformed @prefix at offset %d", p.pos)
	}
	name := strings.TrimSpace(p.input[p.pos : p.pos+colon])
	p.pos += colon + 1
	p.skipWhitespaceAndComments()
	if p.peek() != '<' {
		return fmt.Errorf("expected <iri> in @prefix at offset %d", p.pos)
	}
	end := strings.IndexByte(p.input[p.pos:], '>')
	if end < 0 {
		return fmt.Errorf("unterminated IRI in @prefix at offset %d", p.pos)
	}
	p.prefixes[name] = p.input[p.pos+1 : p.pos+end]
	p.pos += end + 1
	p.skipWhitespaceAndComments()
	if p.peek() == '.' {
		p.pos++
	}
	return nil
}

// parseParam reads an optional type annotation followed by ?name, in
// either order ("ottr:IRI ?id" or "?first_sighted : xsd:date").
func (p *parser) parseParam() (Param, error) {
	p.skipWhitespaceAndComments()
	param := Param{Type: TypeAuto}

	if p.peek() != '?' {
		word, err := p.parseWord()
		if err != nil {
			return param, err
		}
		t, ok := paramType(word)
		if !ok {
			return param, fmt.Errorf("unknown parameter type %q", word)
		}
		param.Type = t
		p.skipWhitespaceAndComments()
	}

	if p.peek() != '?' {
		return param, fmt.Errorf("expected ?name at offset %d", p.pos)
	}
	p.pos++
	name, err := p.parseWord()
	if err != nil {
		return param, err
	}
	param.Name = name

	p.skipWhitespaceAndComments()
	if p.peek() == ':' && p.peekAt(1) != ':' {
		p.pos++
		p.skipWhitespaceAndComments()
		word, err := p.parseWord()
		if err != nil {
			return param, err
		}
		t, ok := paramType(word)
		if !ok {
			return param, fmt.Errorf("unknown parameter type %q", word)
		}
		param.Type = t
	}
	return param, nil
}

func paramType(word string) (ParamType, bool) {
	switch word {
	case "ottr:IRI":
		return TypeIRI, true
	case "xsd:string":
		return TypeString, true
	case "xsd:boolean":
		return TypeBoolean, true
	case "xsd:integer":
		return TypeInteger, true
	case "xsd:date":
		return TypeDate, true
	default:
		return TypeAuto, false
	}
}

func (p *parser) parseTriplePattern() (TriplePattern, error) {
	var tp TriplePattern
	head, err := p.parseWord()
	if err != nil {
		return tp, err
	}
	if head != "ottr:Triple" {
		return tp, fmt.Errorf("unsupported instance %q (only ottr:Triple)", head)
	}
	if err := p.expect('('); err != nil {
		return tp, err
	}
	args := make([]Argument, 0, 3)
	for i := 0; i < 3; i++ {
		p.skipWhitespaceAndComments()
		arg, err := p.parseArgument()
		if err != nil {
			return tp, err
		}
		args = append(args, arg)
		p.skipWhitespaceAndComments()
		if i < 2 {
			if err := p.expect(','); err != nil {
				return tp, err
			}
		}
	}
	if err := p.expect(')'); err != nil {
		return tp, err
	}
	tp.Subject, tp.Predicate, tp.Object = args[0], args[1], args[2]
	return tp, nil
}

func (p *parser) parseArgument() (Argument, error) {
	switch {
	case p.peek() == '?':
		p.pos++
		name, err := p.parseWord()
		if err != nil {
			return Argument{}, err
		}
		return Argument{Var: name}, nil

	case p.peek() == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return Argument{}, err
		}
		return Argument{Term: rdf.NewNamedNode(iri)}, nil

	case p.peek() == '"':
		return p.parseLiteralArgument()

	default:
		word, err := p.parseWord()
		if err != nil {
			return Argument{}, err
		}
		switch word {
		case "a":
			return Argument{Term: rdf.NewNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")}, nil
		case "true":
			return Argument{Term: rdf.NewBooleanLiteral(true)}, nil
		case "false":
			return Argument{Term: rdf.NewBooleanLiteral(false)}, nil
		}
		iri, err := p.expandPrefixed(word)
		if err != nil {
			return Argument{}, err
		}
		return Argument{Term: rdf.NewNamedNode(iri)}, nil
	}
}

func (p *parser) parseLiteralArgument() (Argument, error) {
	p.pos++ // opening quote
	start := p.pos
	for p.pos < p.length && p.input[p.pos] != '"' {
		if p.input[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= p.length {
		return Argument{}, fmt.Errorf("unterminated string literal at offset %d", start)
	}
	value := p.input[start:p.pos]
	p.pos++ // closing quote

	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		word, err := p.parseWord()
		if err != nil {
			return Argument{}, err
		}
		dt, err := p.expandPrefixed(word)
		if err != nil {
			return Argument{}, err
		}
		return Argument{Term: rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(dt))}, nil
	}
	return Argument{Term: rdf.NewLiteral(value)}, nil
}

// parseIRIRef accepts either <full-iri> or a prefixed name, returning the
// expanded IRI string.
func (p *parser) parseIRIRef() (string, error) {
	p.skipWhitespaceAndComments()
	if p.peek() == '<' {
		end := strings.IndexByte(p.input[p.pos:], '>')
		if end < 0 {
			return "", fmt.Errorf("unterminated IRI at offset %d", p.pos)
		}
		iri := p.input[p.pos+1 : p.pos+end]
		p.pos += end + 1
		return iri, nil
	}
	word, err := p.parseWord()
	if err != nil {
		return "", err
	}
	return p.expandPrefixed(word)
}

func (p *parser) expandPrefixed(word string) (string, error) {
	colon := strings.IndexByte(word, ':')
	if colon < 0 {
		return "", fmt.Errorf("expected prefixed name, got %q", word)
	}
	base, ok := p.prefixes[word[:colon]]
	if !ok {
		return "", fmt.Errorf("undeclared prefix %q", word[:colon])
	}
	return base + word[colon+1:], nil
}

func (p *parser) parseWord() (string, error) {
	p.skipWhitespaceAndComments()
	start := p.pos
	for p.pos < p.length {
		c := rune(p.input[p.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == ':' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", fmt.Errorf("expected name at offset %d", start)
	}
	word := p.input[start:p.pos]
	// A trailing colon belongs to the following "::" separator.
	if strings.HasSuffix(word, "::") {
		word = word[:len(word)-2]
		p.pos -= 2
	}
	return word, nil
}

func (p *parser) expect(c byte) error {
	p.skipWhitespaceAndComments()
	if p.pos >= p.length || p.input[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) peek() byte {
	if p.pos >= p.length {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= p.length {
		return 0
	}
	return p.input[p.pos+off]
}

func (p *parser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		c := p.input[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			p.pos++
			continue
		}
		if c == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}
