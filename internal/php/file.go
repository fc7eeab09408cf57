package php

import "strings"

// File is the parsed outline of one PHP source file.
type File struct {
	Namespace string
	// Uses maps an import alias to the fully qualified name it stands for.
	Uses    map[string]string
	Classes []*Class
	Enums   []*Enum
}

// DocComment is a doc comment and its byte span in the source.
type DocComment struct {
	Text  string
	Start int
	End   int
}

// Class is a named class declaration.
type Class struct {
	Name      string
	Namespace string
	Extends   string // fully qualified, empty when the class has no parent
	Abstract  bool

	Doc *DocComment
	// StartOffset is the byte offset of the declaration's first token,
	// attributes and modifiers included.
	StartOffset int

	// Traits lists the fully qualified traits used by the class body.
	Traits     []string
	Constants  map[string]Value
	Properties map[string]Value
	// CastsMethod holds the array returned by a casts() method, if any.
	CastsMethod *Value
}

// FQCN returns the fully qualified class name without a leading backslash.
func (c *Class) FQCN() string {
	return qualify(c.Namespace, c.Name)
}

// Enum is an enum declaration.
type Enum struct {
	Name      string
	Namespace string
}

func (e *Enum) FQCN() string {
	return qualify(e.Namespace, e.Name)
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + `\` + name
}

// ValueKind classifies a literal read from source.
type ValueKind int

const (
	KindOther ValueKind = iota
	KindString
	KindClass // Foo::class, Str holds the fully qualified name
	KindNumber
	KindBool
	KindNull
	KindArray
)

// Value is a constant expression. Anything the reader does not understand is
// kept as KindOther with its raw source in Str.
type Value struct {
	Kind  ValueKind
	Str   string
	Bool  bool
	Items []ArrayItem
}

// ArrayItem is one entry of an array literal. Key is nil for list entries.
type ArrayItem struct {
	Key   *Value
	Value Value
}

// String returns the value as it would be used as a string: string literals
// unquoted, class constants as their name, raw text otherwise.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "1"
		}
		return ""
	case KindNull:
		return ""
	}
	return v.Str
}

// StringMap returns the string-keyed entries of an array value.
func (v Value) StringMap() map[string]string {
	out := make(map[string]string, len(v.Items))
	for _, item := range v.Items {
		if item.Key == nil || item.Key.Kind != KindString {
			continue
		}
		out[item.Key.Str] = item.Value.String()
	}
	return out
}

// resolveName turns a class reference into a fully qualified name using the
// file's namespace and imports.
func (f *File) resolveName(name string) string {
	if strings.HasPrefix(name, `\`) {
		return strings.TrimPrefix(name, `\`)
	}
	switch strings.ToLower(name) {
	case "self", "static", "parent":
		return name
	}
	first, rest, hasRest := strings.Cut(name, `\`)
	if full, ok := f.Uses[strings.ToLower(first)]; ok {
		if hasRest {
			return full + `\` + rest
		}
		return full
	}
	return qualify(f.Namespace, name)
}
