package balance

import (
	"fmt"
	"sort"

	"github.com/crediterra/money"
	"github.com/strongo/decimal"

	"github.com/hearthway/hearthway/internal/expense/split"
)

// Line is one member row in a cost or paid ranking
type Line struct {
	MemberID    string `json:"memberId"`
	DisplayName string `json:"displayName"`
	Amount      string `json:"amount"`
}

// NetLine is one member row in the net balance ranking
type NetLine struct {
	MemberID    string `json:"memberId"`
	DisplayName string `json:"displayName"`
	Net         string `json:"net"`
	Paid        string `json:"paid"`
	Costs       string `json:"costs"`
}

// CurrencyLine is one currency row in the per-currency breakdown
type CurrencyLine struct {
	Currency    string `json:"currency"`
	TotalCost   string `json:"totalCost"`
	TotalPaid   string `json:"totalPaid"`
	UnpaidTotal string `json:"unpaidTotal"`
}

// Statement is the presentation form of a Summary: formatted amounts and
// descending rankings ready for display.
type Statement struct {
	Currency    string `json:"currency"`
	TotalCost   string `json:"totalCost"`
	TotalPaid   string `json:"totalPaid"`
	UnpaidTotal string `json:"unpaidTotal"`

	Costs []Line    `json:"costs"`
	Paid  []Line    `json:"paid"`
	Nets  []NetLine `json:"nets"`

	ByCurrency []CurrencyLine `json:"byCurrency,omitempty"`

	// ExcludesUnpaid is set when some expense money has not been paid yet,
	// since net balances deliberately ignore unpaid expenses.
	ExcludesUnpaid bool `json:"excludesUnpaid"`

	Warnings []split.Warning `json:"warnings,omitempty"`
}

// FormatStatement renders a Summary as display text. Costs and Paid are
// ordered by amount descending, Nets by net descending; members with equal
// values keep their group order.
func FormatStatement(s *Summary) *Statement {
	currency := s.Currency

	st := &Statement{
		Currency:       string(currency),
		TotalCost:      FormatAmount(currency, s.TotalCost),
		TotalPaid:      FormatAmount(currency, s.TotalPaid),
		UnpaidTotal:    FormatAmount(currency, s.UnpaidTotal),
		ExcludesUnpaid: s.TotalPaid != s.TotalCost,
		Warnings:       s.Warnings,
	}

	byCost := rankMembers(s.Members, func(m *MemberTotals) decimal.Decimal64p2 { return m.CostShare })
	for _, m := range byCost {
		st.Costs = append(st.Costs, Line{
			MemberID:    m.MemberID,
			DisplayName: m.DisplayName,
			Amount:      FormatAmount(currency, m.CostShare),
		})
	}

	byPaid := rankMembers(s.Members, func(m *MemberTotals) decimal.Decimal64p2 { return m.AmountPaid })
	for _, m := range byPaid {
		st.Paid = append(st.Paid, Line{
			MemberID:    m.MemberID,
			DisplayName: m.DisplayName,
			Amount:      FormatAmount(currency, m.AmountPaid),
		})
	}

	byNet := rankMembers(s.Members, func(m *MemberTotals) decimal.Decimal64p2 { return m.Net })
	for _, m := range byNet {
		st.Nets = append(st.Nets, NetLine{
			MemberID:    m.MemberID,
			DisplayName: m.DisplayName,
			Net:         FormatAmount(currency, m.Net),
			Paid:        FormatAmount(currency, m.AmountPaid),
			Costs:       FormatAmount(currency, m.OwedPortion),
		})
	}

	currencies := make([]money.Currency, 0, len(s.ByCurrency))
	for c := range s.ByCurrency {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	for _, c := range currencies {
		ct := s.ByCurrency[c]
		st.ByCurrency = append(st.ByCurrency, CurrencyLine{
			Currency:    string(c),
			TotalCost:   FormatAmount(c, ct.TotalCost),
			TotalPaid:   FormatAmount(c, ct.TotalPaid),
			UnpaidTotal: FormatAmount(c, ct.UnpaidTotal),
		})
	}

	return st
}

// rankMembers returns members sorted descending by the keyed value,
// preserving group order for ties.
func rankMembers(members []*MemberTotals, key func(*MemberTotals) decimal.Decimal64p2) []*MemberTotals {
	ranked := make([]*MemberTotals, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return key(ranked[i]) > key(ranked[j])
	})
	return ranked
}

var currencySymbols = map[money.Currency]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// FormatAmount renders a minor-unit value with its currency symbol and two
// fraction digits, e.g. "$12.50" or "-€0.07". Currencies without a known
// symbol are prefixed with their code, e.g. "SEK 12.50".
func FormatAmount(currency money.Currency, v decimal.Decimal64p2) string {
	units := int64(v)
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}

	prefix, ok := currencySymbols[currency]
	if !ok && currency != "" {
		prefix = string(currency) + " "
	}

	return fmt.Sprintf("%s%s%d.%02d", sign, prefix, units/100, units%100)
}
