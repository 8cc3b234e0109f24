// Package address splits free-text address input into a house number and a street.
//
// The accepted house token is an optional single leading letter, one or more
// digits, an optional dash and an optional single trailing letter, followed by
// a space or the end of input. At most one letter may appear in the token, so
// "N456" and "789S" are house numbers while "N456S" is not. A period right
// after the digits rejects the token ("0.65 LN").
package address

import "strings"

// NoHouse is the wire value used when the input has no house number.
const NoHouse = "0"

// Query is the result of splitting an input string.
type Query struct {
	// House holds only the digit run of the house token, or "" when none was found.
	House string
	// Street is the text after the house token, or the whole trimmed input when
	// no house token was found.
	Street string
}

// HasHouse reports whether a house number was extracted.
func (q Query) HasHouse() bool {
	return q.House != ""
}

// HouseParam returns the house number as sent to the suggestion service.
func (q Query) HouseParam() string {
	if q.House == "" {
		return NoHouse
	}
	return q.House
}

// Parse splits input into house and street tokens. It never fails.
func Parse(input string) Query {
	text := strings.TrimSpace(input)
	letters := 0

	pos1 := scanWhile(text, 0, isLetter)
	switch {
	case pos1 == 1:
		letters++
	case pos1 > 1:
		return noHouse(text)
	}

	pos2 := scanWhile(text, pos1, isDigit)
	if pos2 == pos1 {
		return noHouse(text)
	}
	if charAt(text, pos2) == '.' {
		return noHouse(text)
	}

	pos3 := pos2
	if charAt(text, pos2) == '-' {
		pos3++
	}

	pos4 := scanWhile(text, pos3, isLetter)
	switch {
	case pos4 == pos3+1:
		letters++
		if letters >= 2 {
			return noHouse(text)
		}
	case pos4 > pos3+1:
		return noHouse(text)
	}

	if pos4 >= len(text) {
		return Query{House: text[pos1:pos2]}
	}
	if text[pos4] == ' ' {
		return Query{House: text[pos1:pos2], Street: text[pos4+1:]}
	}
	return noHouse(text)
}

func noHouse(text string) Query {
	return Query{Street: text}
}

// charAt returns the byte at pos, or 0 past the end of text.
func charAt(text string, pos int) byte {
	if pos >= len(text) {
		return 0
	}
	return text[pos]
}

func scanWhile(text string, pos int, match func(byte) bool) int {
	for pos < len(text) && match(text[pos]) {
		pos++
	}
	return pos
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
