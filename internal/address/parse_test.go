package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		house  string
		street string
	}{
		{name: "plain number", input: "123 Main", house: "123", street: "Main"},
		{name: "leading unit letter", input: "N456 Oak St", house: "456", street: "Oak St"},
		{name: "trailing suffix letter", input: "789S Elm", house: "789", street: "Elm"},
		{name: "dash and letter", input: "222-B Pine", house: "222", street: "Pine"},
		{name: "decimal is not a house number", input: "0.65 LN", house: "", street: "0.65 LN"},
		{name: "two leading letters", input: "AB123 Main", house: "", street: "AB123 Main"},
		{name: "leading and trailing letter", input: "N456S Oak", house: "", street: "N456S Oak"},
		{name: "two trailing letters", input: "12AB Main", house: "", street: "12AB Main"},
		{name: "no digits", input: "Main Street", house: "", street: "Main Street"},
		{name: "single letter then space", input: "N Main", house: "", street: "N Main"},
		{name: "digits followed by comma", input: "123, Main", house: "", street: "123, Main"},
		{name: "dash without letter", input: "222- Pine", house: "222", street: "Pine"},
		{name: "two dashes", input: "222--B Pine", house: "", street: "222--B Pine"},
		{name: "number only", input: "123", house: "123", street: ""},
		{name: "number with trailing dash at end", input: "222-", house: "222", street: ""},
		{name: "surrounding whitespace trimmed", input: "   123 Main St  ", house: "123", street: "Main St"},
		{name: "street keeps extra inner spaces", input: "123  Main", house: "123", street: " Main"},
		{name: "tab does not terminate token", input: "123\tMain", house: "", street: "123\tMain"},
		{name: "hyphenated range", input: "222-230 Main", house: "", street: "222-230 Main"},
		{name: "empty input", input: "", house: "", street: ""},
		{name: "whitespace only", input: "   ", house: "", street: ""},
		{name: "lowercase letters", input: "n12 elm", house: "12", street: "elm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Parse(tt.input)
			assert.Equal(t, tt.house, q.House)
			assert.Equal(t, tt.street, q.Street)
			assert.Equal(t, tt.house != "", q.HasHouse())
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	inputs := []string{"123 Main", "N456 Oak St", "0.65 LN", "AB123 Main", "", "x", "9-Z Q", "ünïcode 12"}
	for _, in := range inputs {
		assert.Equal(t, Parse(in), Parse(in), in)
	}
}

func TestParse_NoHouseKeepsTrimmedInput(t *testing.T) {
	q := Parse("  Oak Street ")
	assert.False(t, q.HasHouse())
	assert.Equal(t, "Oak Street", q.Street)
}

func TestQuery_HouseParam(t *testing.T) {
	assert.Equal(t, "123", Parse("123 Main").HouseParam())
	assert.Equal(t, NoHouse, Parse("Main").HouseParam())
}
