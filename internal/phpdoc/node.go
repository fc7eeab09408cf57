// Package phpdoc parses and prints PHP doc comments as a flat list of text
// lines and tags.
package phpdoc

import "strings"

// Node is one line of a doc comment body.
type Node interface {
	String() string
}

// TextNode is a line of free text. An empty TextNode is a blank line.
type TextNode struct {
	Text string
}

func (n *TextNode) String() string {
	return n.Text
}

// TagValue is the part of a tag after its name.
type TagValue interface {
	String() string
}

// TagNode is a line starting with an @tag. Continued holds the indented
// lines that follow it, indentation included.
type TagNode struct {
	Name      string
	Value     TagValue
	Continued []string
}

func (n *TagNode) String() string {
	s := n.Name
	if n.Value != nil {
		if value := n.Value.String(); value != "" {
			s += " " + value
		}
	}
	for _, line := range n.Continued {
		s += "\n" + line
	}
	return s
}

// Property returns the property value of an @property, @property-read or
// @property-write tag.
func (n *TagNode) Property() (*PropertyValue, bool) {
	if !IsPropertyTag(n.Name) {
		return nil, false
	}
	value, ok := n.Value.(*PropertyValue)
	return value, ok
}

// PropertyValue is the value of a property tag: "<type> $<name> <description>".
type PropertyValue struct {
	Type        string
	Name        string // including the leading $
	Description string
}

// PropertyName returns the property name without the leading $.
func (v *PropertyValue) PropertyName() string {
	return strings.TrimPrefix(v.Name, "$")
}

func (v *PropertyValue) String() string {
	s := v.Type + " " + v.Name
	if v.Description != "" {
		s += " " + v.Description
	}
	return s
}

// GenericValue is the raw value of any tag that is not a property tag.
type GenericValue struct {
	Value string
}

func (v *GenericValue) String() string {
	return v.Value
}

const (
	TagProperty      = "@property"
	TagPropertyRead  = "@property-read"
	TagPropertyWrite = "@property-write"
)

// IsPropertyTag reports whether name is one of the property tag names.
func IsPropertyTag(name string) bool {
	switch name {
	case TagProperty, TagPropertyRead, TagPropertyWrite:
		return true
	}
	return false
}

// NewProperty builds an @property tag.
func NewProperty(typ, name, description string) *TagNode {
	return &TagNode{
		Name: TagProperty,
		Value: &PropertyValue{
			Type:        typ,
			Name:        "$" + strings.TrimPrefix(name, "$"),
			Description: description,
		},
	}
}

// Block is a parsed doc comment.
type Block struct {
	Children []Node
}

// Filter keeps only the children for which keep returns true.
func (b *Block) Filter(keep func(Node) bool) {
	kept := make([]Node, 0, len(b.Children))
	for _, child := range b.Children {
		if keep(child) {
			kept = append(kept, child)
		}
	}
	b.Children = kept
}

// Prepend places nodes before all existing children, in the given order.
func (b *Block) Prepend(nodes ...Node) {
	children := make([]Node, 0, len(nodes)+len(b.Children))
	children = append(children, nodes...)
	b.Children = append(children, b.Children...)
}
