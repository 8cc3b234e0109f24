package fixture

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Row is one address record as served to clients.
type Row = map[string]any

// Index answers street-prefix queries over a fixed row set.
type Index struct {
	trie *patricia.Trie
	size int
}

// NewIndex indexes rows by their folded "street" value. Rows without a street
// are skipped.
func NewIndex(rows []Row) *Index {
	idx := &Index{trie: patricia.NewTrie()}
	for _, row := range rows {
		street, ok := row["street"].(string)
		if !ok || strings.TrimSpace(street) == "" {
			continue
		}
		key := patricia.Prefix(foldKey(street))
		if item := idx.trie.Get(key); item != nil {
			idx.trie.Set(key, append(item.([]Row), row))
		} else {
			idx.trie.Insert(key, []Row{row})
		}
		idx.size++
	}
	return idx
}

// Len returns the number of indexed rows.
func (idx *Index) Len() int {
	return idx.size
}

// Search returns rows whose street starts with street and whose house number
// matches num. A num of "" or "0" matches every house.
func (idx *Index) Search(street, num string) []Row {
	prefix := foldKey(street)
	if prefix == "" {
		return nil
	}

	var out []Row
	_ = idx.trie.VisitSubtree(patricia.Prefix(prefix), func(_ patricia.Prefix, item patricia.Item) error {
		for _, row := range item.([]Row) {
			if houseMatches(row, num) {
				out = append(out, row)
			}
		}
		return nil
	})

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := foldKey(str(out[i]["street"])), foldKey(str(out[j]["street"]))
		if si != sj {
			return si < sj
		}
		return houseStart(out[i]) < houseStart(out[j])
	})
	return out
}

// foldKey normalizes a street for case-insensitive prefix lookup.
func foldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.Join(strings.Fields(s), " ")))
}

// houseMatches reports whether num is a prefix of the row's house number, or
// falls inside a "lo-hi" range.
func houseMatches(row Row, num string) bool {
	if num == "" || num == "0" {
		return true
	}
	house := str(row["num"])
	if strings.HasPrefix(house, num) {
		return true
	}
	lo, hi, ok := strings.Cut(house, "-")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return false
	}
	l, errLo := strconv.Atoi(lo)
	h, errHi := strconv.Atoi(hi)
	return errLo == nil && errHi == nil && l <= n && n <= h
}

func houseStart(row Row) int {
	lo, _, _ := strings.Cut(str(row["num"]), "-")
	n, err := strconv.Atoi(lo)
	if err != nil {
		return -1
	}
	return n
}

func str(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
