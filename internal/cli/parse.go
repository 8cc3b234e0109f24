package cli

import (
	"fmt"

	"github.com/NikitaCOEUR/addrsearch/internal/address"
)

// Parse prints the house and street tokens extracted from text.
func Parse(c Common, text string) error {
	q := address.Parse(text)
	house := q.House
	if !q.HasHouse() {
		house = "(none)"
	}
	_, err := fmt.Fprintf(c.out(), "house:  %s\nstreet: %s\nnum:    %s\n", house, q.Street, q.HouseParam())
	return err
}
