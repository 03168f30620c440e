package ratio

// Unit tells the presentation layer how to format a ratio value.
type Unit string

const (
	UnitRatio      Unit = "ratio"
	UnitPercentage Unit = "percentage"
	UnitDays       Unit = "days"
	UnitCurrency   Unit = "currency"
)

// Metadata describes one analysis indicator: its display grouping, label and
// the formula text shown alongside the value.
type Metadata struct {
	Key     string `json:"key"`
	Group   string `json:"group"`
	Name    string `json:"name"`
	Formula string `json:"formula"`
	Unit    Unit   `json:"unit"`
}

const (
	groupProfitability = "Các hệ số về khả năng sinh lời"
	groupCapital       = "Các hệ số về cơ cấu vốn"
	groupLiquidity     = "Các hệ số về khả năng thanh toán"
	groupDupont        = "Phân tích Dupont"
)

// catalog is the fixed indicator list, in report order. The order is part of
// the API contract: table rows are emitted exactly in this sequence.
var catalog = []Metadata{
	{Key: "roa", Group: groupProfitability, Name: "Suất sinh lời của Tổng tài sản (ROA)", Formula: "Lợi nhuận sau thuế/Tổng tài sản bình quân", Unit: UnitPercentage},
	{Key: "roe", Group: groupProfitability, Name: "Suất sinh lời của Vốn CSH (ROE)", Formula: "Lợi nhuận sau thuế/ Vốn CSH bình quân", Unit: UnitPercentage},
	{Key: "pbtMargin", Group: groupProfitability, Name: "Lợi nhuận trước thuế/Doanh thu", Formula: "Lợi nhuận trước thuế/Doanh thu, thu nhập", Unit: UnitPercentage},

	{Key: "capitalAdequacyRatio", Group: groupCapital, Name: "Hệ số bảo toàn vốn", Formula: "Vốn CSH cuối kỳ/Vốn CSH đầu kỳ", Unit: UnitRatio},
	{Key: "debtCoverageRatio", Group: groupCapital, Name: "Hệ số bảo đảm nợ", Formula: "Vốn CSH/Nợ phải trả", Unit: UnitRatio},
	{Key: "selfFinancingRatio", Group: groupCapital, Name: "Hệ số tự tài trợ", Formula: "Vốn CSH/Tổng Tài sản", Unit: UnitRatio},
	{Key: "debtToAssetRatio", Group: groupCapital, Name: "Hệ số nợ tài sản", Formula: "Nợ phải trả/Tổng Tài sản", Unit: UnitRatio},
	{Key: "currentAssetToTotalAssetRatio", Group: groupCapital, Name: "Hệ số Tài sản ngắn hạn", Formula: "Tài sản ngắn hạn/Tổng Tài sản", Unit: UnitRatio},
	{Key: "assetTurnover", Group: groupCapital, Name: "Vòng quay Tổng tài sản", Formula: "(Doanh thu – Các khoản giảm trừ Doanh thu)/Tổng Tài sản", Unit: UnitRatio},
	{Key: "debtToEquityRatio", Group: groupCapital, Name: "Hệ số nợ Vốn chủ", Formula: "Nợ phải trả/Vốn CSH", Unit: UnitRatio},
	{Key: "loanToEquityRatio", Group: groupCapital, Name: "Tỷ lệ vay so với Vốn CSH", Formula: "(Nợ vay ngắn hạn + Nợ vay dài hạn)/Vốn CSH", Unit: UnitRatio},
	{Key: "longTermAssetSelfFinancingRatio", Group: groupCapital, Name: "Hệ số tự tài trợ Tài sản Dài hạn", Formula: "Vốn CSH/Tài sản dài hạn", Unit: UnitRatio},
	{Key: "longTermDebtRatio", Group: groupCapital, Name: "Tỷ lệ Nợ dài hạn", Formula: "Nợ dài hạn/Vốn CSH", Unit: UnitRatio},
	{Key: "workingCapitalTurnover", Group: groupCapital, Name: "Vòng quay vốn lưu động", Formula: "(Doanh thu – Các khoản giảm trừ Doanh thu) / (Tài sản ngắn hạn – Nợ ngắn hạn)", Unit: UnitRatio},
	{Key: "payablesTurnover", Group: groupCapital, Name: "Vòng quay thanh toán công nợ", Formula: "(Giá vốn hàng bán + Hàng tồn kho cuối kỳ - Hàng tồn kho đầu kỳ) / (Nợ Phải trả đầu năm + Nợ Phải trả cuối năm)/2", Unit: UnitRatio},
	{Key: "receivablesTurnover", Group: groupCapital, Name: "Vòng quay các khoản phải thu", Formula: "(Doanh thu - các khoản giảm trừ doanh thu)/Các khoản phải thu", Unit: UnitRatio},
	{Key: "daysSalesOutstanding", Group: groupCapital, Name: "Số ngày thu hồi công nợ", Formula: "360/ Vòng quay các khoản phải thu", Unit: UnitDays},

	{Key: "solvencyRatio", Group: groupLiquidity, Name: "Hệ số khả năng thanh toán tổng quát", Formula: "Tổng Tài sản/Nợ phải trả", Unit: UnitRatio},
	{Key: "quickRatio", Group: groupLiquidity, Name: "Hệ số khả năng thanh toán tức thời", Formula: "(Tiền + Các khoản đầu tư Tài chính ngắn hạn) / Nợ phải trả ngắn hạn", Unit: UnitRatio},
	{Key: "currentRatio", Group: groupLiquidity, Name: "Hệ số khả năng thanh toán hiện thời", Formula: "Tài sản ngắn hạn/Nợ phải trả ngắn hạn", Unit: UnitRatio},
	{Key: "cashRatio", Group: groupLiquidity, Name: "Hệ số thanh toán bằng tiền", Formula: "Tiền/ Nợ phải trả ngắn hạn", Unit: UnitRatio},

	{Key: "ebit", Group: groupDupont, Name: "Lợi nhuận trước thuế và lãi vay (EBIT)", Formula: "Lợi nhuận trước thuế + Chi phí lãi vay", Unit: UnitCurrency},
	{Key: "taxBurdenRatio", Group: groupDupont, Name: "Hệ số gánh nặng thuế", Formula: "Lợi nhuận sau thuế/Lợi nhuận trước thuế", Unit: UnitRatio},
	{Key: "interestBurdenRatio", Group: groupDupont, Name: "Hệ số gánh nặng lãi vay", Formula: "Lợi nhuận trước thuế/EBIT", Unit: UnitRatio},
	{Key: "ebitMargin", Group: groupDupont, Name: "EBIT Margin", Formula: "EBIT/(Doanh thu - các khoản giảm trừ doanh thu)", Unit: UnitPercentage},
	{Key: "assetTurnover_dupont", Group: groupDupont, Name: "Vòng quay Tổng tài sản", Formula: "(Doanh thu – Các khoản giảm trừ Doanh thu)/Tổng Tài sản", Unit: UnitRatio},
	{Key: "financialLeverage", Group: groupDupont, Name: "Tổng tài sản/ Vốn CSH", Formula: "Tổng Tài sản/Vốn CSH", Unit: UnitRatio},
	{Key: "roe_dupont", Group: groupDupont, Name: "Suất sinh lời của Vốn CSH (ROE)", Formula: "Lợi nhuận sau thuế/Vốn CSH", Unit: UnitPercentage},
}

// Indicators returns the ordered indicator catalog.
func Indicators() []Metadata {
	out := make([]Metadata, len(catalog))
	copy(out, catalog)
	return out
}

// IndicatorByKey looks up one indicator's metadata.
func IndicatorByKey(key string) (Metadata, bool) {
	for _, m := range catalog {
		if m.Key == key {
			return m, true
		}
	}
	return Metadata{}, false
}
