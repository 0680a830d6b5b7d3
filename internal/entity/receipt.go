package entity

// ProductLine is one line item of a receipt. Quantity and UnitPrice keep the
// localized text exactly as printed; numeric normalization happens downstream.
type ProductLine struct {
	Description string `json:"descricao"`
	Quantity    string `json:"quantidade"`
	UnitPrice   string `json:"valor_unitario"`
	// Unit is the unit code that anchored the line, when known.
	Unit string `json:"-"`
}

// ReceiptRecord is the structured result for one receipt segment.
type ReceiptRecord struct {
	ID       string        `json:"numero,omitempty"`
	Seller   string        `json:"vendedor,omitempty"`
	Customer string        `json:"cliente,omitempty"`
	Products []ProductLine `json:"produtos"`
}

// HasHeader reports whether any header field was extracted.
func (r ReceiptRecord) HasHeader() bool {
	return r.ID != "" || r.Seller != "" || r.Customer != ""
}

// ReceiptSegment is the span of the joined document text attributed to one receipt.
type ReceiptSegment struct {
	Start int    `json:"start_offset"`
	End   int    `json:"end_offset"`
	Text  string `json:"-"`
	// ID is the receipt id captured at the boundary, or a synthetic one.
	ID string `json:"id,omitempty"`
	// Synthetic is set when ID was assigned from the ordinal position.
	Synthetic bool `json:"synthetic"`
}
