package cgd

type amountLayout int

const (
	// signedColumn holds one amount whose sign gives the direction.
	signedColumn amountLayout = iota
	// debitCredit splits outflows and inflows into two unsigned columns.
	debitCredit
)

// layout names the columns of one CGD export variant.
type layout struct {
	name    string
	date    string
	desc    string
	amounts amountLayout
	amount  string
	debit   string
	credit  string
}

func (l layout) columns() []string {
	if l.amounts == debitCredit {
		return []string{l.date, l.desc, l.debit, l.credit}
	}

	return []string{l.date, l.desc, l.amount}
}

// layouts are tried in order against every row until one header matches.
var layouts = []layout{
	{name: "cartão", date: "Data", desc: "Descrição", amounts: debitCredit, debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", desc: "Descrição", amounts: signedColumn, amount: "Movimento"},
	{name: "conta", date: "Data mov.", desc: "Descrição", amounts: signedColumn, amount: "Montante"},
}
