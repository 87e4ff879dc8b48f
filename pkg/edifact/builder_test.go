package edifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBuilder_Empty(t *testing.T) {
	order := NewOrderBuilder().Build()

	assert.Equal(t, 0, order.Len())
	_, ok := order.InterchangeHeader()
	assert.False(t, ok)
	_, ok = order.MessageHeader()
	assert.False(t, ok)
}

func TestOrderBuilder_Text(t *testing.T) {
	text := NewOrderBuilder().
		WithInterchangeHeader("S", "R", "D", "C").
		WithMessageHeader("1", "ORDERS").
		WithBGM("220", "123456", "9").
		AddOrderLine("1", "ITEM1", "2", "9.99").
		Build().
		Text()

	assert.Contains(t, text, "UNB+UNOA:4+S+R+D+C+ORDERS'")
	assert.Contains(t, text, "UNH+1+ORDERS:D:01B:UN'")
	assert.Contains(t, text, "BGM+220+123456+9'")
	assert.Contains(t, text, "LIN+1++ITEM1:BP'")
	assert.Contains(t, text, "QTY+21:2'")
	assert.Contains(t, text, "PRI+AAA:9.99'")
	assert.NotContains(t, text, "UNA")
}

func TestOrderBuilder_Segments(t *testing.T) {
	order := NewOrderBuilder().
		WithInterchangeHeader("SENDER", "RECEIVER", "20240119:1200", "REF123").
		WithMessageHeader("1", "ORDERS").
		WithBGM("220", "123456", "9").
		AddOrderLine("1", "ITEM123", "5", "10.00").
		Build()

	unb, ok := order.InterchangeHeader()
	require.True(t, ok)
	assert.Equal(t, [][]string{
		{"UNOA", "4"}, {"SENDER"}, {"RECEIVER"}, {"20240119:1200"}, {"REF123"}, {"ORDERS"},
	}, unb.Elements())
	assert.Equal(t, 0, unb.Position())

	unh, ok := order.MessageHeader()
	require.True(t, ok)
	assert.Equal(t, [][]string{{"1"}, {"ORDERS", "D", "01B", "UN"}}, unh.Elements())
	assert.Equal(t, 1, unh.Position())

	body := order.Body()
	require.Len(t, body, 4)
	assert.Equal(t, "BGM", body[0].Tag())
	assert.Equal(t, [][]string{{"1"}, {}, {"ITEM123", "BP"}}, body[1].Elements())
	assert.Equal(t, [][]string{{"21", "5"}}, body[2].Elements())
	assert.Equal(t, [][]string{{"AAA", "10.00"}}, body[3].Elements())
	for i, seg := range body {
		assert.Equal(t, i, seg.Position())
	}

	assert.Empty(t, order.Segments("MOA"))
	assert.Empty(t, order.Segments("RFF"))
	assert.Empty(t, order.Segments("IMD"))
}

func TestOrderBuilder_EscapesHeaderValues(t *testing.T) {
	text := NewOrderBuilder().
		WithInterchangeHeader("S", "R", "20240119:1200", "C").
		Build().
		Text()

	assert.Contains(t, text, "+20240119?:1200+")

	order, err := ParseDocument(text)
	require.NoError(t, err)
	unb, _ := order.InterchangeHeader()
	assert.Equal(t, "20240119:1200", unb.ComponentOr(3, 0, ""))
}

func TestOrderBuilder_BuildIsSnapshot(t *testing.T) {
	builder := NewOrderBuilder().
		WithInterchangeHeader("S", "R", "D", "C").
		AddOrderLine("1", "ITEM1", "1", "1.00")

	first := builder.Build()

	builder.AddOrderLine("2", "ITEM2", "2", "2.00").
		WithInterchangeHeader("OTHER", "R", "D", "C")
	second := builder.Build()

	assert.Equal(t, 3, first.Len())
	assert.Equal(t, "S", first.Sender())
	assert.Equal(t, 6, second.Len())
	assert.Equal(t, "OTHER", second.Sender())

	first.AddSegment("UNS", [][]string{{"S"}})
	third := builder.Build()
	assert.Equal(t, 6, third.Len())
}

func TestOrderBuilder_RoundTrip(t *testing.T) {
	built := NewOrderBuilder().
		WithInterchangeHeader("SENDER", "RECEIVER", "20240119", "REF123").
		WithMessageHeader("1", "ORDERS").
		WithBGM("220", "123456", "9").
		AddOrderLine("1", "ITEM1", "2", "9.99").
		AddOrderLine("2", "ITEM2", "1", "4.50").
		Build()

	parsed, err := ParseDocument(built.Text())
	require.NoError(t, err)
	assert.Equal(t, built.Text(), parsed.Text())

	lines := parsed.OrderLines()
	require.Len(t, lines, 2)
	assert.Equal(t, "ITEM2", lines[1].Line.ComponentOr(2, 0, ""))
	assert.Equal(t, "4.50", lines[1].Price.ComponentOr(0, 1, ""))
	assert.True(t, built.Body()[1].Equal(parsed.Body()[1]))
}
