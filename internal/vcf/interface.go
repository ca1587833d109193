// Package vcf provides VCF file parsing functionality.
package vcf

// VariantParser is the interface for parsers that read variant records.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants. A *ParseError
	// reports a malformed line; reading may continue after it.
	Next() (*Variant, error)

	// Close closes the parser and releases resources.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}
