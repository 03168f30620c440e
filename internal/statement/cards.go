package statement

import "regexp"

// Metric-card projections: thin name/sequence-id lookups over a finished
// forest, mirroring the summary tiles above each statement table.

// BalanceSheetCards holds the four balance-sheet headline figures.
type BalanceSheetCards struct {
	ShortTermAssets *float64 `json:"shortTermAssets"`
	LongTermAssets  *float64 `json:"longTermAssets"`
	Liabilities     *float64 `json:"liabilities"`
	Equity          *float64 `json:"equity"`
}

// IncomeCards holds the income-statement headline figures.
type IncomeCards struct {
	ProfitBeforeTax    *float64 `json:"profitBeforeTax"`
	CurrentTaxExpense  *float64 `json:"currentTaxExpense"`
	DeferredTaxExpense *float64 `json:"deferredTaxExpense"`
	ProfitAfterTax     *float64 `json:"profitAfterTax"`
}

// CashFlowCards holds the three net cash-flow figures.
type CashFlowCards struct {
	NetFromOperating *float64 `json:"netFromOperating"`
	NetFromInvesting *float64 `json:"netFromInvesting"`
	NetFromFinancing *float64 `json:"netFromFinancing"`
}

var (
	assetsParentPattern     = regexp.MustCompile(`(?i)tài\s*sản`)
	shortTermAssetsPattern  = regexp.MustCompile(`(?i)tài\s*sản\s*ngắn\s*hạn`)
	longTermAssetsPattern   = regexp.MustCompile(`(?i)tài\s*sản\s*dài\s*hạn`)
	capitalParentPattern    = regexp.MustCompile(`(?i)nguồn\s*vốn`)
	liabilitiesPattern      = regexp.MustCompile(`(?i)nợ\s*phải\s*trả`)
	equityPattern           = regexp.MustCompile(`(?i)vốn\s*chủ\s*sở\s*hữu`)
	netFromOperatingPattern = regexp.MustCompile(`(?i)^Lưu chuyển tiền thuần từ hoạt động kinh doanh$`)
	netFromInvestingPattern = regexp.MustCompile(`(?i)^Lưu chuyển tiền thuần từ hoạt động đầu tư$`)
	netFromFinancingPattern = regexp.MustCompile(`(?i)^Lưu chuyển tiền thuần từ hoạt động tài chính$`)
)

const (
	profitBeforeTaxSequenceID    = 16
	currentTaxExpenseSequenceID  = 17
	deferredTaxExpenseSequenceID = 18
	profitAfterTaxSequenceID     = 19
)

// BalanceSheetMetrics reads the headline values off the tree: the card is
// the matching second-level child under the matching root.
func BalanceSheetMetrics(roots []*Node) BalanceSheetCards {
	return BalanceSheetCards{
		ShortTermAssets: childEnd(roots, assetsParentPattern, shortTermAssetsPattern),
		LongTermAssets:  childEnd(roots, assetsParentPattern, longTermAssetsPattern),
		Liabilities:     childEnd(roots, capitalParentPattern, liabilitiesPattern),
		Equity:          childEnd(roots, capitalParentPattern, equityPattern),
	}
}

// IncomeMetrics reads the four profit lines by sequence id.
func IncomeMetrics(roots []*Node) IncomeCards {
	return IncomeCards{
		ProfitBeforeTax:    endBySequenceID(roots, profitBeforeTaxSequenceID),
		CurrentTaxExpense:  endBySequenceID(roots, currentTaxExpenseSequenceID),
		DeferredTaxExpense: endBySequenceID(roots, deferredTaxExpenseSequenceID),
		ProfitAfterTax:     endBySequenceID(roots, profitAfterTaxSequenceID),
	}
}

// CashFlowMetrics reads the net flow summary rows by their full names, so
// the cards always agree with the table rows of the same name.
func CashFlowMetrics(roots []*Node) CashFlowCards {
	return CashFlowCards{
		NetFromOperating: endByName(roots, netFromOperatingPattern),
		NetFromInvesting: endByName(roots, netFromInvestingPattern),
		NetFromFinancing: endByName(roots, netFromFinancingPattern),
	}
}

func childEnd(roots []*Node, parentPattern, childPattern *regexp.Regexp) *float64 {
	for _, root := range roots {
		if !parentPattern.MatchString(root.Name) {
			continue
		}
		for _, child := range root.Children {
			if childPattern.MatchString(child.Name) {
				return child.End
			}
		}
		return nil
	}
	return nil
}

func endBySequenceID(roots []*Node, sequenceID int64) *float64 {
	if n := FindBySequenceID(roots, sequenceID); n != nil {
		return n.End
	}
	return nil
}

func endByName(roots []*Node, pattern *regexp.Regexp) *float64 {
	if n := FindByName(roots, pattern); n != nil {
		return n.End
	}
	return nil
}
