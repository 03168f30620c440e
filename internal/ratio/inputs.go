package ratio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/finsight-vn/finsight/internal/facts"
	"github.com/finsight-vn/finsight/internal/period"
)

// Input identifies one aggregated figure the ratio formulas consume.
type Input string

const (
	InputShortTermAssets      Input = "shortTermAssets"
	InputCashAndEquivalents   Input = "cashAndEquivalents"
	InputShortTermInvestments Input = "shortTermInvestments"
	InputShortTermLiabilities Input = "shortTermLiabilities"
	InputTotalAssets          Input = "totalAssets"
	InputEquity               Input = "equity"
	InputTotalLiabilities     Input = "totalLiabilities"
	InputLongTermAssets       Input = "longTermAssets"
	InputLongTermDebt         Input = "longTermDebt"
	InputInventory            Input = "inventory"
	InputShortTermReceivables Input = "shortTermReceivables"
	InputLongTermReceivables  Input = "longTermReceivables"

	InputProfitAfterTax     Input = "profitAfterTax"
	InputProfitBeforeTax    Input = "profitBeforeTax"
	InputNetRevenue         Input = "netRevenue"
	InputCostOfGoodsSold    Input = "costOfGoodsSold"
	InputInterestExpense    Input = "interestExpense"
	InputContributedCapital Input = "contributedCapital"
	InputShortTermLoans     Input = "shortTermLoans"
	InputLongTermLoans      Input = "longTermLoans"
	InputTradePayables      Input = "tradePayables"
)

// balanceSheetIndicators maps each aggregated balance-sheet input to the
// statement row whose leaf accounts are summed for it. The labels are the
// exact row names of the standard Vietnamese balance sheet.
var balanceSheetIndicators = map[Input]string{
	InputShortTermAssets:      "A. TÀI SẢN NGẮN HẠN",
	InputCashAndEquivalents:   "I. Tiền và các khoản tương đương tiền",
	InputShortTermInvestments: "II. Các khoản đầu tư tài chính ngắn hạn",
	InputShortTermLiabilities: "I. Nợ ngắn hạn",
	InputTotalAssets:          "TỔNG CỘNG TÀI SẢN (270 = 100 + 200)",
	InputEquity:               "D. VỐN CHỦ SỞ HỮU (400 = 410 + 430)",
	InputTotalLiabilities:     "C. NỢ PHẢI TRẢ (300 = 310 + 330)",
	InputLongTermAssets:       "B. TÀI SẢN DÀI HẠN",
	InputLongTermDebt:         "II. Nợ dài hạn",
	InputInventory:            "IV. Hàng tồn kho",
	InputShortTermReceivables: "III. Các khoản phải thu ngắn hạn",
	InputLongTermReceivables:  "I. Các khoản phải thu dài hạn",
}

// singleSequenceIDs pins the income-statement and capital rows that are
// fetched by fixed row number rather than resolved by label.
var singleSequenceIDs = map[Input][]int64{
	InputProfitAfterTax:     {19},
	InputProfitBeforeTax:    {16},
	InputNetRevenue:         {3},
	InputCostOfGoodsSold:    {4},
	InputInterestExpense:    {8},
	InputContributedCapital: {100},
	InputShortTermLoans:     {81},
	InputLongTermLoans:      {93},
	InputTradePayables:      {73},
}

// IndicatorResolver resolves a statement row label to its leaf account ids.
type IndicatorResolver interface {
	ResolveIndicator(ctx context.Context, stmt period.Statement, label string) ([]int64, error)
}

// AccountSets maps every input to the account ids summed for it.
type AccountSets map[Input][]int64

// ResolveAccountSets resolves the balance-sheet inputs through the indicator
// resolver and merges in the fixed row numbers.
func ResolveAccountSets(ctx context.Context, resolver IndicatorResolver) (AccountSets, error) {
	sets := make(AccountSets, len(balanceSheetIndicators)+len(singleSequenceIDs))
	for input, label := range balanceSheetIndicators {
		ids, err := resolver.ResolveIndicator(ctx, period.StatementBalanceSheet, label)
		if err != nil {
			return nil, fmt.Errorf("ratio: resolve %s: %w", input, err)
		}
		sets[input] = ids
	}
	for input, ids := range singleSequenceIDs {
		sets[input] = ids
	}
	return sets, nil
}

// AccountIDs returns the union of all account ids across the sets, sorted.
func (s AccountSets) AccountIDs() []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, ids := range s {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InputTable holds the summed input values per period date. A missing inner
// map means no facts exist for that date at all; a missing input key means
// none of its accounts had a value.
type InputTable map[time.Time]map[Input]float64

// Tabulate sums the fetched facts into per-date input values. An input is
// present for a date only when at least one of its accounts carries a value
// there.
func Tabulate(lookup facts.Lookup, sets AccountSets, dates []time.Time) InputTable {
	table := make(InputTable, len(dates))
	for _, date := range dates {
		for input, ids := range sets {
			sum := lookup.Sum(ids, date)
			if sum == nil {
				continue
			}
			row := table[date]
			if row == nil {
				row = make(map[Input]float64, len(sets))
				table[date] = row
			}
			row[input] = *sum
		}
	}
	return table
}
