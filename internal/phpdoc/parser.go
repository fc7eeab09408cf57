package phpdoc

import (
	"errors"
	"strings"
	"unicode"
)

// Empty is the placeholder parsed when a class has no doc comment.
const Empty = "/**\n */"

var ErrNotDocComment = errors.New("text is not a doc comment")

// Parse parses a /** ... */ comment into a Block. Lines starting with @ are
// tags and indented lines right below a tag belong to it. Any other line is
// text.
func Parse(text string) (*Block, error) {
	text = strings.TrimSpace(text)
	if len(text) < len("/***/") || !strings.HasPrefix(text, "/**") || !strings.HasSuffix(text, "*/") {
		return nil, ErrNotDocComment
	}
	body := text[len("/**") : len(text)-len("*/")]
	body = strings.ReplaceAll(body, "\r\n", "\n")

	lines := strings.Split(body, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	block := &Block{Children: make([]Node, 0, len(lines))}
	for _, line := range lines {
		line = stripLinePrefix(line)
		if tag, ok := lastTag(block); ok && isContinuation(line) {
			tag.Continued = append(tag.Continued, line)
			continue
		}
		block.Children = append(block.Children, parseLine(line))
	}
	return block, nil
}

// stripLinePrefix removes the indentation, the leading asterisk and the
// single space that follows it.
func stripLinePrefix(line string) string {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	if strings.HasPrefix(line, "*") {
		line = line[1:]
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			line = line[1:]
		}
	}
	return strings.TrimRightFunc(line, unicode.IsSpace)
}

func lastTag(block *Block) (*TagNode, bool) {
	if len(block.Children) == 0 {
		return nil, false
	}
	tag, ok := block.Children[len(block.Children)-1].(*TagNode)
	return tag, ok
}

// isContinuation reports whether line is an indented non-tag line, which
// belongs to the tag above it.
func isContinuation(line string) bool {
	if line == "" || (line[0] != ' ' && line[0] != '\t') {
		return false
	}
	return !strings.HasPrefix(strings.TrimSpace(line), "@")
}

func parseLine(line string) Node {
	if !strings.HasPrefix(line, "@") {
		return &TextNode{Text: line}
	}
	name, rest := splitWord(line)
	if IsPropertyTag(name) {
		if value, ok := parsePropertyValue(rest); ok {
			return &TagNode{Name: name, Value: value}
		}
	}
	return &TagNode{Name: name, Value: &GenericValue{Value: rest}}
}

func parsePropertyValue(s string) (*PropertyValue, bool) {
	typ, rest := splitType(s)
	if typ == "" || strings.HasPrefix(typ, "$") {
		return nil, false
	}
	name, description := splitWord(rest)
	if len(name) < 2 || !strings.HasPrefix(name, "$") {
		return nil, false
	}
	return &PropertyValue{Type: typ, Name: name, Description: description}, true
}

// splitType reads a type expression, keeping whitespace that sits inside
// <>, (), [] or {} so that "array<string, mixed>" stays whole.
func splitType(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	depth := 0
	for i, r := range s {
		switch r {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && unicode.IsSpace(r) {
				return s[:i], strings.TrimSpace(s[i:])
			}
		}
	}
	return s, ""
}

func splitWord(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
