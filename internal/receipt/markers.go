package receipt

import "regexp"

var (
	// receipt number labels, most specific first; all variants are merged
	idLabelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)RECIBO\s+N[º°o]\.?\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)N[º°]\s*:?\s*(\d+)`),
		regexp.MustCompile(`\bNo\.\s*:?\s*(\d+)`),
		regexp.MustCompile(`(?i)\bN[ÚU]MERO\s*:\s*(\d+)`),
	}

	// receipt title followed by a date-time stamp on the same line
	titleDateTimeRe = regexp.MustCompile(`(?i)\b(?:RECIBO|RECEIPT)\b[^\n]{0,80}?\b\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}(?::\d{2})?`)

	// "Página 1 de 3" / "Page 1 of 3"
	firstPageRe = regexp.MustCompile(`(?i)\bP(?:[ÁA]GINA|AGE|[ÁA]G\.?)\s*:?\s*0*1\s*(?:DE|OF|/)\s*(\d+)\b`)

	// value must sit on the label's own line
	sellerRe       = regexp.MustCompile(`(?i)(?:Vendedor|Seller)[ \t]*:[ \t]*([^\n]*)`)
	customerRe     = regexp.MustCompile(`(?i)NOME\s*/\s*RAZ[ÃA]O\s+SOCIAL`)
	customerSameRe = regexp.MustCompile(`(?i)NOME\s*/\s*RAZ[ÃA]O\s+SOCIAL\s*:\s*(.+)`)

	sectionOpenRe = regexp.MustCompile(`(?i)DADOS\s+DO(?:S)?\s+PRODUTO`)

	goodsTotalRe = regexp.MustCompile(`(?i)TOTAL\s+DE\s+MERCADORIAS`)
	totalsRe     = regexp.MustCompile(`(?i)\bTOTAIS\b`)
	paymentRe    = regexp.MustCompile(`(?i)\bPAGAMENTO\b`)

	// looser markers used only past the last known terminator
	laxPaymentRe = regexp.MustCompile(`(?i)\b(?:PGTO|PAGTO|FORMA\s+DE\s+PAG|CONDI[ÇC][ÃA]O\s+DE\s+PAG|VENCIMENTO)`)
	laxTotalsRe  = regexp.MustCompile(`(?i)\b(?:TOTAL\s+GERAL|VALOR\s+TOTAL|TOTAL\s+A\s+PAGAR|TOTAL\s+DO\s+RECIBO)\b`)
)

// terminal markers that close a receipt body, folded
var terminalKeywords = []string{"PAGAMENTO", "TOTAIS", "TOTAL DE MERCADORIAS"}

// keywords that mark a totals row inside the product table, folded
var totalKeywords = []string{"TOTAL", "MERCADORIAS"}

// column header fragments of the product table, folded
var columnHeaderKeywords = []string{"CODIGO", "DESCRICAO DOS PRODUTOS", "UNID", "QTD", "V.UNITARIO"}

// keywords that signal trailing lot/expiry/regulatory codes, folded
var codeKeywords = []string{"FAB", "VAL-", "VAL ", "ANVISA"}

// dosage and pharmaceutical-form keywords, folded
var dosageKeywords = []string{"MG", "ML", "SOL", "INJ", "FRASCO"}

// labels that are never a customer name, folded
var otherLabelKeywords = []string{"NOME FANTASIA", "CNPJ", "CPF", "EMAIL", "E-MAIL", "ENDERECO", "TELEFONE", "INSCRICAO"}
