package phpdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Should parse text lines and tags in order", func(t *testing.T) {
		block, err := Parse("/**\n * User account.\n *\n * @property int $id database column id\n * @mixin Builder\n */")
		require.NoError(t, err)
		require.Len(t, block.Children, 4)

		assert.Equal(t, &TextNode{Text: "User account."}, block.Children[0])
		assert.Equal(t, &TextNode{Text: ""}, block.Children[1])

		tag, ok := block.Children[2].(*TagNode)
		require.True(t, ok)
		prop, ok := tag.Property()
		require.True(t, ok)
		assert.Equal(t, "int", prop.Type)
		assert.Equal(t, "$id", prop.Name)
		assert.Equal(t, "id", prop.PropertyName())
		assert.Equal(t, "database column id", prop.Description)

		mixin, ok := block.Children[3].(*TagNode)
		require.True(t, ok)
		assert.Equal(t, "@mixin", mixin.Name)
		assert.Equal(t, &GenericValue{Value: "Builder"}, mixin.Value)
	})

	t.Run("Should keep generic types with spaces together", func(t *testing.T) {
		block, err := Parse("/**\n * @property array<string, mixed> $settings database column settings\n */")
		require.NoError(t, err)
		prop, ok := block.Children[0].(*TagNode).Property()
		require.True(t, ok)
		assert.Equal(t, "array<string, mixed>", prop.Type)
		assert.Equal(t, "$settings", prop.Name)
	})

	t.Run("Should parse read and write property tags", func(t *testing.T) {
		block, err := Parse("/**\n * @property-read null|string $name\n * @property-write int $age\n */")
		require.NoError(t, err)
		require.Len(t, block.Children, 2)
		for i, name := range []string{"$name", "$age"} {
			prop, ok := block.Children[i].(*TagNode).Property()
			require.True(t, ok)
			assert.Equal(t, name, prop.Name)
		}
	})

	t.Run("Should treat property tags without a variable as generic", func(t *testing.T) {
		block, err := Parse("/**\n * @property broken\n */")
		require.NoError(t, err)
		tag := block.Children[0].(*TagNode)
		_, ok := tag.Property()
		assert.False(t, ok)
		assert.Equal(t, "@property broken", tag.String())
	})

	t.Run("Should parse single line comments", func(t *testing.T) {
		block, err := Parse("/** @deprecated use Account */")
		require.NoError(t, err)
		require.Len(t, block.Children, 1)
		assert.Equal(t, "@deprecated use Account", block.Children[0].String())
	})

	t.Run("Should parse the empty placeholder", func(t *testing.T) {
		block, err := Parse(Empty)
		require.NoError(t, err)
		assert.Empty(t, block.Children)
	})

	t.Run("Should reject text that is not a doc comment", func(t *testing.T) {
		_, err := Parse("/* plain */")
		assert.ErrorIs(t, err, ErrNotDocComment)
		_, err = Parse("// line")
		assert.ErrorIs(t, err, ErrNotDocComment)
	})

	t.Run("Should handle windows line endings", func(t *testing.T) {
		block, err := Parse("/**\r\n * @property int $id\r\n */")
		require.NoError(t, err)
		require.Len(t, block.Children, 1)
		_, ok := block.Children[0].(*TagNode).Property()
		assert.True(t, ok)
	})

	t.Run("Should attach indented lines to the tag above", func(t *testing.T) {
		block, err := Parse("/**\n * @deprecated since 2.0,\n *     use Account instead\n * Notes.\n */")
		require.NoError(t, err)
		require.Len(t, block.Children, 2)

		tag := block.Children[0].(*TagNode)
		assert.Equal(t, &GenericValue{Value: "since 2.0,"}, tag.Value)
		assert.Equal(t, []string{"    use Account instead"}, tag.Continued)
		assert.Equal(t, &TextNode{Text: "Notes."}, block.Children[1])
	})

	t.Run("Should keep indented lines as text when no tag precedes them", func(t *testing.T) {
		block, err := Parse("/**\n * Summary.\n *   indented\n * @see Other\n *   @return void\n */")
		require.NoError(t, err)
		require.Len(t, block.Children, 4)
		assert.Equal(t, &TextNode{Text: "  indented"}, block.Children[1])
		assert.Empty(t, block.Children[2].(*TagNode).Continued)
		assert.Equal(t, &TextNode{Text: "  @return void"}, block.Children[3])
	})
}

func TestPrint(t *testing.T) {
	t.Run("Should print the empty block as the placeholder", func(t *testing.T) {
		assert.Equal(t, Empty, Print(&Block{}))
	})

	t.Run("Should print blank lines without trailing space", func(t *testing.T) {
		block := &Block{Children: []Node{
			NewProperty("string", "email", "database column email"),
			&TextNode{},
			&TextNode{Text: "Hand written."},
		}}
		expected := "/**\n * @property string $email database column email\n *\n * Hand written.\n */"
		assert.Equal(t, expected, Print(block))
	})

	t.Run("Should round trip multi-line tags", func(t *testing.T) {
		text := "/**\n * @property array $meta database column meta\n *   keys: color, size\n *\n * @method static Builder active()\n */"
		block, err := Parse(text)
		require.NoError(t, err)
		require.Len(t, block.Children, 3)
		assert.Equal(t, text, Print(block))
	})

	t.Run("Should round trip printed output byte for byte", func(t *testing.T) {
		text := "/**\n * @property null|Carbon $deleted_at database column deleted_at\n *\n * @method static Builder active()\n */"
		block, err := Parse(text)
		require.NoError(t, err)
		assert.Equal(t, text, Print(block))
	})
}

func TestBlock(t *testing.T) {
	t.Run("Should prepend nodes before existing children", func(t *testing.T) {
		block := &Block{Children: []Node{&TextNode{Text: "c"}}}
		block.Prepend(&TextNode{Text: "a"}, &TextNode{Text: "b"})
		assert.Equal(t, "/**\n * a\n * b\n * c\n */", Print(block))
	})

	t.Run("Should filter children", func(t *testing.T) {
		block := &Block{Children: []Node{
			NewProperty("int", "id", ""),
			&TextNode{Text: "keep"},
		}}
		block.Filter(func(n Node) bool {
			_, isTag := n.(*TagNode)
			return !isTag
		})
		assert.Equal(t, []Node{&TextNode{Text: "keep"}}, block.Children)
	})
}
