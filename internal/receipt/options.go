package receipt

import "github.com/joseph-ayodele/recibos-extractor/internal/common"

// Options holds the heuristic thresholds of the engine. They were tuned empirically
// on real receipts and should be recalibrated against a corpus before changing.
type Options struct {
	// MinSectionLines is the floor of the minimum expected product-section length.
	MinSectionLines int
	// SectionLinesDivisor scales the minimum with document size: total_lines / divisor.
	SectionLinesDivisor int
	// LookbackLines bounds the backward description scan.
	LookbackLines int
	// ForwardSearchLines bounds the search for a later terminator past the last known one.
	ForwardSearchLines int
	// FallbackRatio is the fraction of the minimum length a distant terminator must reach.
	FallbackRatio float64
	// LenientUnits accepts a unit code glued to a word when the line carries a
	// regulatory code or a long digit run. Trades precision for recall.
	LenientUnits bool
	// TableCrossCheck enables the page-table cross-validator.
	TableCrossCheck bool
	// ProductNames are the tokens that open a product description.
	ProductNames []string
	// IDLookahead bounds the window after a boundary match searched for the receipt id.
	IDLookahead int
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		MinSectionLines:     30,
		SectionLinesDivisor: 20,
		LookbackLines:       10,
		ForwardSearchLines:  200,
		FallbackRatio:       0.8,
		LenientUnits:        true,
		TableCrossCheck:     true,
		ProductNames:        []string{"TIRZEPATIDE", "SEMAGLUTIDA", "SEMAGLUTIDE", "CANETA"},
		IDLookahead:         300,
	}
}

// withDefaults fills zero values so a partially populated Options is usable.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinSectionLines <= 0 {
		o.MinSectionLines = d.MinSectionLines
	}
	if o.SectionLinesDivisor <= 0 {
		o.SectionLinesDivisor = d.SectionLinesDivisor
	}
	if o.LookbackLines <= 0 {
		o.LookbackLines = d.LookbackLines
	}
	if o.ForwardSearchLines <= 0 {
		o.ForwardSearchLines = d.ForwardSearchLines
	}
	if o.FallbackRatio <= 0 {
		o.FallbackRatio = d.FallbackRatio
	}
	if len(o.ProductNames) == 0 {
		o.ProductNames = d.ProductNames
	}
	if o.IDLookahead <= 0 {
		o.IDLookahead = d.IDLookahead
	}
	return o
}

// OptionsFromConfig maps the extract configuration section onto engine Options.
func OptionsFromConfig(c common.ExtractConfig) Options {
	return Options{
		MinSectionLines:     c.MinSectionLines,
		SectionLinesDivisor: c.SectionLinesDivisor,
		LookbackLines:       c.LookbackLines,
		ForwardSearchLines:  c.ForwardSearchLines,
		FallbackRatio:       c.FallbackRatio,
		LenientUnits:        c.LenientUnits,
		TableCrossCheck:     c.TableCrossCheck,
		ProductNames:        c.ProductNames,
	}.withDefaults()
}
