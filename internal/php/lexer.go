// Package php reads just enough of a PHP source file to describe its class
// and enum declarations: namespaces, imports, doc comments, constants,
// property defaults and the array returned by a casts() method.
package php

import (
	"bytes"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokVariable
	tokString
	tokNumber
	tokDocComment
	tokAttribute // "#["
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string // for strings, the unquoted value
	start int
	end   int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) isPunct(text string) bool {
	return t.is(tokPunct, text)
}

func (t token) isKeyword(word string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, word)
}

type lexer struct {
	src    []byte
	pos    int
	tokens []token
}

func tokenize(src []byte) []token {
	l := &lexer{src: src}
	l.skipInlineHTML()
	for l.pos < len(l.src) {
		l.next()
	}
	return l.tokens
}

func (l *lexer) advance(n int) {
	end := l.pos + n
	if end > len(l.src) {
		end = len(l.src)
	}
	l.pos = end
}

func (l *lexer) hasPrefix(s string) bool {
	return bytes.HasPrefix(l.src[l.pos:], []byte(s))
}

// skipInlineHTML moves past everything up to and including the next open tag.
func (l *lexer) skipInlineHTML() {
	rest := l.src[l.pos:]
	idx := bytes.Index(rest, []byte("<?php"))
	width := len("<?php")
	if short := bytes.Index(rest, []byte("<?=")); short >= 0 && (idx < 0 || short < idx) {
		idx, width = short, len("<?=")
	}
	if idx < 0 {
		l.advance(len(rest))
		return
	}
	l.advance(idx + width)
}

func (l *lexer) emit(kind tokenKind, text string, start int) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, start: start, end: l.pos})
}

func (l *lexer) next() {
	c := l.src[l.pos]
	start := l.pos

	switch {
	case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		l.advance(1)
	case l.hasPrefix("?>"):
		l.advance(2)
		l.skipInlineHTML()
	case l.hasPrefix("/**") && !l.hasPrefix("/**/"):
		l.skipUntil("*/")
		l.emit(tokDocComment, string(l.src[start:l.pos]), start)
	case l.hasPrefix("/*"):
		l.skipUntil("*/")
	case l.hasPrefix("#["):
		l.advance(2)
		l.emit(tokAttribute, "#[", start)
	case c == '#' || l.hasPrefix("//"):
		l.skipLineComment()
	case l.hasPrefix("<<<"):
		l.skipHeredoc()
		l.emit(tokString, "", start)
	case c == '\'' || c == '"' || c == '`':
		value := l.readQuoted(c)
		l.emit(tokString, value, start)
	case c == '$' && l.pos+1 < len(l.src) && isIdentStart(l.src[l.pos+1]):
		l.advance(1)
		l.readIdent()
		l.emit(tokVariable, string(l.src[start+1:l.pos]), start)
	case isIdentStart(c) || (c == '\\' && l.pos+1 < len(l.src) && isIdentStart(l.src[l.pos+1])):
		l.readIdent()
		l.emit(tokIdent, string(l.src[start:l.pos]), start)
	case c >= '0' && c <= '9':
		for l.pos < len(l.src) && (isIdentPart(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.advance(1)
		}
		l.emit(tokNumber, string(l.src[start:l.pos]), start)
	default:
		for _, op := range []string{"=>", "::", "?->", "->", "??"} {
			if l.hasPrefix(op) {
				l.advance(len(op))
				l.emit(tokPunct, op, start)
				return
			}
		}
		l.advance(1)
		l.emit(tokPunct, string(c), start)
	}
}

func (l *lexer) skipUntil(end string) {
	idx := bytes.Index(l.src[l.pos+2:], []byte(end))
	if idx < 0 {
		l.advance(len(l.src) - l.pos)
		return
	}
	l.advance(2 + idx + len(end))
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		if l.hasPrefix("?>") {
			return
		}
		l.advance(1)
	}
}

func (l *lexer) skipHeredoc() {
	l.advance(3)
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.advance(1)
	}
	quoted := l.pos < len(l.src) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"')
	if quoted {
		l.advance(1)
	}
	labelStart := l.pos
	l.readIdent()
	label := string(l.src[labelStart:l.pos])
	if label == "" {
		return
	}
	// The closing label is the first line whose trimmed start is the label.
	for l.pos < len(l.src) {
		nl := bytes.IndexByte(l.src[l.pos:], '\n')
		if nl < 0 {
			l.advance(len(l.src) - l.pos)
			return
		}
		l.advance(nl + 1)
		rest := bytes.TrimLeft(l.src[l.pos:], " \t")
		if bytes.HasPrefix(rest, []byte(label)) {
			after := len(rest) - len(label)
			if after == 0 || !isIdentPart(rest[len(label)]) {
				l.advance(len(l.src) - l.pos - after)
				return
			}
		}
	}
}

func (l *lexer) readQuoted(quote byte) string {
	l.advance(1)
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.advance(1)
			return b.String()
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			next := l.src[l.pos+1]
			switch {
			case next == quote || next == '\\':
				b.WriteByte(next)
				l.advance(2)
				continue
			case quote == '"' && next == 'n':
				b.WriteByte('\n')
				l.advance(2)
				continue
			case quote == '"' && next == 't':
				b.WriteByte('\t')
				l.advance(2)
				continue
			}
		}
		b.WriteByte(c)
		l.advance(1)
	}
	return b.String()
}

func (l *lexer) readIdent() {
	for l.pos < len(l.src) && (isIdentPart(l.src[l.pos]) || l.src[l.pos] == '\\') {
		l.advance(1)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
