package export

import "github.com/xuri/excelize/v2"

// numFmtThousands is the built-in "#,##0.00" format.
const numFmtThousands = 4

type blockStyle struct {
	text, seller, number int
}

type styles struct {
	receiptHeader int
	statsHeader   int
	rowWhite      int
	rowGray       int
	// block holds the light and dark seller-block styles; blockRuled adds the top rule.
	block      [2]blockStyle
	blockRuled [2]blockStyle
}

func fill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	header := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:      fill(color),
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
	}
	data := func(color string, bold bool, numFmt int, ruled bool) (int, error) {
		s := &excelize.Style{
			Fill:      fill(color),
			Font:      &excelize.Font{Size: 10, Color: "000000", Bold: bold},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
			NumFmt:    numFmt,
		}
		if ruled {
			s.Border = []excelize.Border{{Type: "top", Color: "808080", Style: 2}}
		}
		return f.NewStyle(s)
	}

	if st.receiptHeader, err = header("366092"); err != nil {
		return st, err
	}
	if st.statsHeader, err = header("70AD47"); err != nil {
		return st, err
	}
	if st.rowWhite, err = data("FFFFFF", false, 0, false); err != nil {
		return st, err
	}
	if st.rowGray, err = data("F2F2F2", false, 0, false); err != nil {
		return st, err
	}
	for i, color := range []string{"E8F5E9", "C8E6C9"} {
		for _, ruled := range []bool{false, true} {
			var b blockStyle
			if b.text, err = data(color, false, 0, ruled); err != nil {
				return st, err
			}
			if b.seller, err = data(color, true, 0, ruled); err != nil {
				return st, err
			}
			if b.number, err = data(color, false, numFmtThousands, ruled); err != nil {
				return st, err
			}
			if ruled {
				st.blockRuled[i] = b
			} else {
				st.block[i] = b
			}
		}
	}
	return st, nil
}
