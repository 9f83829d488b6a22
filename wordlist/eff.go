package wordlist

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/sethvargo/go-diceware/diceware"

	"github.com/rbaliyan/layerkey"
)

// EFFLargeName is the display name of the built-in table.
const EFFLargeName = "EFF Large"

var effLarge = sync.OnceValues(func() (*layerkey.StaticWordList, error) {
	var buf bytes.Buffer
	writeDiceList(&buf, diceware.WordListEffLarge())
	return Load(&buf)
})

// EFFLarge returns the built-in EFF large wordlist (7776 words in dice
// order). The table is rendered in dice-list form and passes through the
// same EFFLargeSHA256 check as a file on disk, so it is byte-for-byte the
// published list. The returned table is shared; StaticWordList is
// immutable.
func EFFLarge() (*layerkey.StaticWordList, error) {
	return effLarge()
}

// writeDiceList renders list in ascending roll order, one "roll<TAB>word"
// line per entry.
func writeDiceList(buf *bytes.Buffer, list diceware.WordList) {
	for _, roll := range rolls(list.Digits()) {
		fmt.Fprintf(buf, "%d\t%s\n", roll, list.WordAt(roll))
	}
}

// rolls enumerates every roll of digits six-sided dice, 11..1 to 66..6.
func rolls(digits int) []int {
	out := []int{0}
	for range digits {
		next := make([]int, 0, len(out)*6)
		for _, prefix := range out {
			for face := 1; face <= 6; face++ {
				next = append(next, prefix*10+face)
			}
		}
		out = next
	}
	return out
}
