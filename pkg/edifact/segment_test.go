package edifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_Text(t *testing.T) {
	seg := NewSegment("DTM", [][]string{{"137"}, {"20240119"}, {"102"}}, 0)
	assert.Equal(t, "DTM+137+20240119+102'", seg.Text(DefaultDelimiters()))
}

func TestSegment_TextComposites(t *testing.T) {
	seg := NewSegment("LIN", [][]string{{"1"}, {}, {"ITEM123", "BP"}}, 0)
	assert.Equal(t, "LIN+1++ITEM123:BP'", seg.Text(DefaultDelimiters()))

	custom, err := ParseUNA("UNA|^.?@~")
	require.NoError(t, err)
	assert.Equal(t, "LIN^1^^ITEM123|BP~", seg.Text(custom))
}

func TestSegment_TextNoElements(t *testing.T) {
	seg := NewSegment("UNS", nil, 0)
	assert.Equal(t, "UNS'", seg.Text(DefaultDelimiters()))
}

func TestSegment_TextEscaping(t *testing.T) {
	d := DefaultDelimiters()
	tests := []struct {
		component string
		want      string
	}{
		{"a+b", "FTX+a?+b'"},
		{"a:b", "FTX+a?:b'"},
		{"a'b", "FTX+a?'b'"},
		{"a*b", "FTX+a?*b'"},
		{"9.99", "FTX+9.99'"},
		{"a?b", "FTX+a?b'"},
	}

	for _, tt := range tests {
		t.Run(tt.component, func(t *testing.T) {
			seg := NewSegment("FTX", [][]string{{tt.component}}, 0)
			assert.Equal(t, tt.want, seg.Text(d))
		})
	}
}

func TestSegment_EscapedRolesRoundTrip(t *testing.T) {
	d := DefaultDelimiters()
	for _, r := range []rune{d.Data, d.Component, d.Decimal, d.Segment, d.Reserved} {
		t.Run(string(r), func(t *testing.T) {
			original := NewSegment("FTX", [][]string{{"AAA"}, {"x" + string(r) + "y", "z"}}, 0)

			parsed, err := ParseSegment(original.Text(d), d)
			require.NoError(t, err)
			assert.True(t, original.Equal(parsed), "got %s", parsed)
		})
	}
}

func TestSegment_EscapeCharacterIsNotEscaped(t *testing.T) {
	d := DefaultDelimiters()
	original := NewSegment("FTX", [][]string{{"what?now"}}, 0)

	parsed, err := ParseSegment(original.Text(d), d)
	require.NoError(t, err)
	c, _ := parsed.Component(0, 0)
	assert.Equal(t, "whatnow", c)
}

func TestSegment_PlainRoundTrip(t *testing.T) {
	d := DefaultDelimiters()
	tests := []struct {
		name     string
		tag      string
		elements [][]string
	}{
		{"single", "BGM", [][]string{{"220"}, {"123456"}, {"9"}}},
		{"composite", "NAD", [][]string{{"BY"}, {"5021376940009", "", "9"}}},
		{"empty middle element", "LIN", [][]string{{"1"}, {}, {"ITEM", "BP"}}},
		{"trailing empty component", "DTM", [][]string{{"137", ""}}},
		{"leading empty components", "NAD", [][]string{{"BY"}, {"", "", "", "9"}}},
		{"no elements", "UNS", [][]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := NewSegment(tt.tag, tt.elements, 0)
			text := original.Text(d)

			parsed, err := ParseSegment(text, d)
			require.NoError(t, err)
			assert.True(t, original.Equal(parsed), "%s parsed as %s", text, parsed)
			assert.Equal(t, text, parsed.Text(d))
		})
	}
}

func TestSegment_Accessors(t *testing.T) {
	seg := NewSegment("NAD", [][]string{{"BY"}, {"12345", "92"}}, 7)

	assert.Equal(t, "NAD", seg.Tag())
	assert.Equal(t, 7, seg.Position())
	assert.Equal(t, 2, seg.Len())

	el, ok := seg.Element(1)
	require.True(t, ok)
	assert.Equal(t, []string{"12345", "92"}, el)

	_, ok = seg.Element(2)
	assert.False(t, ok)
	_, ok = seg.Element(-1)
	assert.False(t, ok)

	c, ok := seg.Component(1, 1)
	require.True(t, ok)
	assert.Equal(t, "92", c)

	_, ok = seg.Component(1, 2)
	assert.False(t, ok)
	_, ok = seg.Component(2, 0)
	assert.False(t, ok)

	assert.Equal(t, "fallback", seg.ComponentOr(5, 0, "fallback"))
	assert.Equal(t, "BY", seg.ComponentOr(0, 0, "fallback"))
}

func TestSegment_Immutable(t *testing.T) {
	input := [][]string{{"BY"}, {"12345"}}
	seg := NewSegment("NAD", input, 0)

	input[0][0] = "SU"
	assert.Equal(t, "BY", seg.ComponentOr(0, 0, ""))

	els := seg.Elements()
	els[1][0] = "changed"
	assert.Equal(t, "12345", seg.ComponentOr(1, 0, ""))

	el, _ := seg.Element(0)
	el[0] = "changed"
	assert.Equal(t, "BY", seg.ComponentOr(0, 0, ""))
}

func TestSegment_String(t *testing.T) {
	seg := NewSegment("NAD", [][]string{{"BY"}, {"123", "9"}}, 0)
	assert.Equal(t, "NAD: [[BY] [123 9]]", seg.String())
}

func TestSegment_Equal(t *testing.T) {
	a := NewSegment("QTY", [][]string{{"21", "5"}}, 0)
	b := NewSegment("QTY", [][]string{{"21", "5"}}, 9)
	c := NewSegment("QTY", [][]string{{"21", "6"}}, 0)
	d := NewSegment("PRI", [][]string{{"21", "5"}}, 0)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}
