package layerkey

// WordSource supplies the ordered word table used for mnemonic output.
// Implementations must be immutable once constructed and safe for
// concurrent use.
type WordSource interface {
	// Words returns the table in its canonical order.
	Words() []string

	// WordCount returns len(Words()).
	WordCount() int
}
