package phpdoc

import "strings"

// Print renders a block as a multi-line doc comment. An empty block renders
// as Empty.
func Print(block *Block) string {
	var b strings.Builder
	b.WriteString("/**\n")
	for _, child := range block.Children {
		for _, line := range strings.Split(child.String(), "\n") {
			if line == "" {
				b.WriteString(" *\n")
				continue
			}
			b.WriteString(" * ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString(" */")
	return b.String()
}
