package php

import (
	"errors"
	"strings"
)

var ErrUnbalanced = errors.New("unbalanced braces")

type parser struct {
	src  []byte
	toks []token
	pos  int
	file *File
}

// ParseFile outlines the classes and enums declared in src.
func ParseFile(src []byte) (*File, error) {
	p := &parser{
		src:  src,
		toks: tokenize(src),
		file: &File{Uses: make(map[string]string)},
	}
	if err := p.parseTopLevel(); err != nil {
		return nil, err
	}
	return p.file, nil
}

func (p *parser) peek(offset int) token {
	i := p.pos + offset
	if i < 0 || i >= len(p.toks) {
		return token{kind: tokPunct, text: "", start: len(p.src), end: len(p.src)}
	}
	return p.toks[i]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) parseTopLevel() error {
	var (
		doc       *DocComment
		declStart = -1
		abstract  bool
		depth     int
		nsIsBlock bool
	)
	reset := func() {
		doc, declStart, abstract = nil, -1, false
	}

	for !p.eof() {
		t := p.peek(0)
		switch {
		case t.kind == tokDocComment:
			reset()
			doc = &DocComment{Text: t.text, Start: t.start, End: t.end}
			p.pos++
		case t.kind == tokAttribute:
			if declStart < 0 {
				declStart = t.start
			}
			p.skipAttribute()
		case t.isKeyword("abstract"), t.isKeyword("final"), t.isKeyword("readonly"):
			if declStart < 0 {
				declStart = t.start
			}
			abstract = abstract || t.isKeyword("abstract")
			p.pos++
		case t.isKeyword("class") && !p.peek(-1).isPunct("::") && !p.peek(-1).isKeyword("new") && p.isClassName(1):
			if declStart < 0 {
				declStart = t.start
			}
			class := &Class{
				Namespace:   p.file.Namespace,
				Abstract:    abstract,
				Doc:         doc,
				StartOffset: declStart,
				Constants:   make(map[string]Value),
				Properties:  make(map[string]Value),
			}
			reset()
			if err := p.parseClass(class); err != nil {
				return err
			}
			p.file.Classes = append(p.file.Classes, class)
		case t.isKeyword("enum") && p.peek(1).kind == tokIdent && (p.peek(2).isPunct(":") || p.peek(2).isPunct("{") || p.peek(2).isKeyword("implements")):
			reset()
			if err := p.parseEnum(); err != nil {
				return err
			}
		case (depth == 0 || (nsIsBlock && depth == 1)) && t.isKeyword("namespace") && !p.peek(1).isPunct(`\`):
			reset()
			p.pos++
			p.file.Namespace = ""
			if p.peek(0).kind == tokIdent {
				p.file.Namespace = strings.TrimPrefix(p.peek(0).text, `\`)
				p.pos++
			}
			p.file.Uses = make(map[string]string)
			nsIsBlock = p.peek(0).isPunct("{")
		case (depth == 0 || (nsIsBlock && depth == 1)) && t.isKeyword("use") && p.peek(1).kind == tokIdent:
			reset()
			p.parseUse()
		case t.isPunct("{"):
			reset()
			depth++
			p.pos++
		case t.isPunct("}"):
			reset()
			depth--
			if depth < 0 {
				return ErrUnbalanced
			}
			if depth == 0 {
				nsIsBlock = false
			}
			p.pos++
		default:
			reset()
			p.pos++
		}
	}
	if depth != 0 {
		return ErrUnbalanced
	}
	return nil
}

func (p *parser) isClassName(offset int) bool {
	t := p.peek(offset)
	return t.kind == tokIdent && !t.isKeyword("extends") && !t.isKeyword("implements")
}

// skipAttribute moves past a #[...] group.
func (p *parser) skipAttribute() {
	p.pos++
	depth := 1
	for !p.eof() && depth > 0 {
		t := p.peek(0)
		switch {
		case t.isPunct("["), t.kind == tokAttribute:
			depth++
		case t.isPunct("]"):
			depth--
		}
		p.pos++
	}
}

// skipBalanced moves past a {...}, (...) or [...] group starting at the
// current token.
func (p *parser) skipBalanced() error {
	open := p.peek(0).text
	closeText := map[string]string{"{": "}", "(": ")", "[": "]"}[open]
	depth := 0
	for !p.eof() {
		t := p.peek(0)
		switch {
		case t.isPunct(open):
			depth++
		case t.isPunct(closeText):
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return ErrUnbalanced
}

func (p *parser) parseUse() {
	p.pos++
	if p.peek(0).isKeyword("function") || p.peek(0).isKeyword("const") {
		p.skipPast(";")
		return
	}
	for !p.eof() {
		t := p.peek(0)
		if t.kind != tokIdent {
			p.skipPast(";")
			return
		}
		p.pos++
		name := strings.TrimPrefix(t.text, `\`)
		if strings.HasSuffix(name, `\`) && p.peek(0).isPunct("{") {
			p.pos++
			for !p.eof() && !p.peek(0).isPunct("}") {
				if p.peek(0).kind == tokIdent {
					inner := p.peek(0).text
					p.pos++
					p.addUse(name+inner, p.readAlias())
					continue
				}
				p.pos++
			}
			p.pos++
		} else {
			p.addUse(name, p.readAlias())
		}
		if p.peek(0).isPunct(",") {
			p.pos++
			continue
		}
		p.skipPast(";")
		return
	}
}

func (p *parser) readAlias() string {
	if p.peek(0).isKeyword("as") && p.peek(1).kind == tokIdent {
		alias := p.peek(1).text
		p.pos += 2
		return alias
	}
	return ""
}

func (p *parser) addUse(name, alias string) {
	if alias == "" {
		alias = name
		if i := strings.LastIndex(name, `\`); i >= 0 {
			alias = name[i+1:]
		}
	}
	p.file.Uses[strings.ToLower(alias)] = name
}

func (p *parser) skipPast(text string) {
	for !p.eof() {
		t := p.peek(0)
		p.pos++
		if t.isPunct(text) {
			return
		}
	}
}

func (p *parser) parseEnum() error {
	enum := &Enum{Name: p.peek(1).text, Namespace: p.file.Namespace}
	p.pos += 2
	for !p.eof() && !p.peek(0).isPunct("{") {
		p.pos++
	}
	if err := p.skipBalanced(); err != nil {
		return err
	}
	p.file.Enums = append(p.file.Enums, enum)
	return nil
}

func (p *parser) parseClass(class *Class) error {
	class.Name = p.peek(1).text
	p.pos += 2
	if p.peek(0).isKeyword("extends") && p.peek(1).kind == tokIdent {
		class.Extends = p.file.resolveName(p.peek(1).text)
		p.pos += 2
	}
	for !p.eof() && !p.peek(0).isPunct("{") {
		p.pos++
	}
	if p.eof() {
		return ErrUnbalanced
	}
	p.pos++

	for !p.eof() {
		t := p.peek(0)
		switch {
		case t.isPunct("}"):
			p.pos++
			return nil
		case t.isPunct("{"):
			if err := p.skipBalanced(); err != nil {
				return err
			}
		case t.kind == tokAttribute:
			p.skipAttribute()
		case t.isKeyword("use"):
			p.parseTraitUse(class)
		case t.isKeyword("const"):
			p.pos++
			p.parseConstants(class)
		case t.isKeyword("function"):
			if err := p.parseMethod(class); err != nil {
				return err
			}
		case t.kind == tokVariable && p.peek(1).isPunct("="):
			p.pos += 2
			class.Properties[t.text] = p.parseValue()
		default:
			p.pos++
		}
	}
	return ErrUnbalanced
}

// parseTraitUse reads "use A, B;" and "use A, B { ... }" inside a class body.
func (p *parser) parseTraitUse(class *Class) {
	p.pos++
	for !p.eof() {
		t := p.peek(0)
		switch {
		case t.isPunct(";"):
			p.pos++
			return
		case t.isPunct("{"):
			_ = p.skipBalanced()
			return
		case t.kind == tokIdent:
			class.Traits = append(class.Traits, p.file.resolveName(t.text))
		}
		p.pos++
	}
}

// parseConstants reads "[type] NAME = value[, NAME = value];".
func (p *parser) parseConstants(class *Class) {
	for !p.eof() {
		t := p.peek(0)
		switch {
		case t.isPunct(";"):
			p.pos++
			return
		case t.kind == tokIdent && p.peek(1).isPunct("="):
			p.pos += 2
			class.Constants[t.text] = p.parseValue()
		default:
			p.pos++
		}
	}
}

func (p *parser) parseMethod(class *Class) error {
	p.pos++
	if p.peek(0).isPunct("&") {
		p.pos++
	}
	name := p.peek(0).text
	for !p.eof() && !p.peek(0).isPunct("{") && !p.peek(0).isPunct(";") {
		if p.peek(0).isPunct("(") {
			if err := p.skipBalanced(); err != nil {
				return err
			}
			continue
		}
		p.pos++
	}
	if p.eof() {
		return ErrUnbalanced
	}
	if p.peek(0).isPunct(";") {
		p.pos++
		return nil
	}

	bodyStart := p.pos
	if err := p.skipBalanced(); err != nil {
		return err
	}
	if !strings.EqualFold(name, "casts") {
		return nil
	}

	bodyEnd := p.pos
	p.pos = bodyStart + 1
	depth := 0
	for p.pos < bodyEnd-1 {
		t := p.peek(0)
		switch {
		case t.isPunct("{"):
			depth++
		case t.isPunct("}"):
			depth--
		case depth == 0 && t.isKeyword("return"):
			p.pos++
			value := p.parseReturnedArrays(bodyEnd - 1)
			class.CastsMethod = &value
			p.pos = bodyEnd
			return nil
		}
		p.pos++
	}
	p.pos = bodyEnd
	return nil
}

// parseReturnedArrays collects the entries of every array literal in a return
// expression, so array_merge(parent::casts(), [...]) yields the literal part.
func (p *parser) parseReturnedArrays(limit int) Value {
	merged := Value{Kind: KindArray}
	for p.pos < limit && !p.peek(0).isPunct(";") {
		t := p.peek(0)
		prev := p.peek(-1)
		literal := t.isPunct("[") && prev.kind != tokVariable && !prev.isPunct("]") && !prev.isPunct(")") && !prev.isPunct("}")
		literal = literal || (t.isKeyword("array") && p.peek(1).isPunct("("))
		if literal {
			value := p.parseValue()
			merged.Items = append(merged.Items, value.Items...)
			continue
		}
		p.pos++
	}
	return merged
}

func isTerminator(t token) bool {
	return t.isPunct(",") || t.isPunct(";") || t.isPunct("]") || t.isPunct(")") || t.isPunct("=>")
}

// parseValue reads one constant expression and leaves the parser on the
// token that ends it.
func (p *parser) parseValue() Value {
	startTok := p.pos
	value, ok := p.parsePrimary()
	for ok && p.peek(0).isPunct(".") {
		p.pos++
		var right Value
		right, ok = p.parsePrimary()
		kind := KindString
		if value.Kind == KindClass {
			kind = KindClass
		}
		value = Value{Kind: kind, Str: value.String() + right.String()}
	}
	if ok && (p.eof() || isTerminator(p.peek(0))) {
		return value
	}
	return p.rawFrom(startTok)
}

// rawFrom consumes the rest of an expression and returns its source text.
func (p *parser) rawFrom(startTok int) Value {
	p.pos = startTok
	depth := 0
	for !p.eof() {
		t := p.peek(0)
		if depth == 0 && (isTerminator(t) || t.isPunct("}")) {
			break
		}
		switch {
		case t.isPunct("("), t.isPunct("["), t.isPunct("{"), t.kind == tokAttribute:
			depth++
		case t.isPunct(")"), t.isPunct("]"), t.isPunct("}"):
			depth--
		}
		p.pos++
	}
	if p.pos <= startTok {
		return Value{Kind: KindOther}
	}
	start := p.toks[startTok].start
	end := p.toks[p.pos-1].end
	return Value{Kind: KindOther, Str: strings.TrimSpace(string(p.src[start:end]))}
}

func (p *parser) parsePrimary() (Value, bool) {
	t := p.peek(0)
	switch {
	case t.kind == tokString:
		p.pos++
		return Value{Kind: KindString, Str: t.text}, true
	case t.kind == tokNumber:
		p.pos++
		return Value{Kind: KindNumber, Str: t.text}, true
	case t.isPunct("-") && p.peek(1).kind == tokNumber:
		p.pos += 2
		return Value{Kind: KindNumber, Str: "-" + p.peek(-1).text}, true
	case t.isKeyword("true"), t.isKeyword("false"):
		p.pos++
		return Value{Kind: KindBool, Bool: t.isKeyword("true")}, true
	case t.isKeyword("null"):
		p.pos++
		return Value{Kind: KindNull}, true
	case t.isPunct("["):
		return p.parseArray("]"), true
	case t.isKeyword("array") && p.peek(1).isPunct("("):
		p.pos++
		return p.parseArray(")"), true
	case t.kind == tokIdent && p.peek(1).isPunct("::") && p.peek(2).isKeyword("class"):
		p.pos += 3
		return Value{Kind: KindClass, Str: p.file.resolveName(t.text)}, true
	}
	return Value{}, false
}

func (p *parser) parseArray(closeText string) Value {
	p.pos++
	value := Value{Kind: KindArray}
	for !p.eof() {
		if p.peek(0).isPunct(closeText) {
			p.pos++
			return value
		}
		if p.peek(0).isPunct(",") {
			p.pos++
			continue
		}
		before := p.pos
		item := ArrayItem{Value: p.parseValue()}
		if p.peek(0).isPunct("=>") {
			key := item.Value
			p.pos++
			item = ArrayItem{Key: &key, Value: p.parseValue()}
		}
		value.Items = append(value.Items, item)
		if p.pos == before {
			// Stray closing token of another kind; give up on this array.
			p.pos++
		}
	}
	return value
}
