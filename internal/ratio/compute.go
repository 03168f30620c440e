package ratio

// Values holds one computed ratio set, keyed by indicator key. A nil entry
// means the ratio is undefined for the period (missing input or zero
// denominator); it is never coerced to zero.
type Values map[string]*float64

// SafeDiv divides num by den scaled by mult, propagating missing inputs and
// zero denominators as nil instead of NaN or Inf.
func SafeDiv(num, den *float64, mult float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den * mult
	return &v
}

// quarterDays is the average day count of one fiscal quarter (365/4), used
// to convert turnover ratios into day counts.
const quarterDays = 91.25

func get(row map[Input]float64, in Input) *float64 {
	v, ok := row[in]
	if !ok {
		return nil
	}
	return &v
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func addBoth(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a + *b
	return &v
}

func average(start, end *float64) *float64 {
	if start == nil || end == nil {
		return nil
	}
	v := (*start + *end) / 2
	return &v
}

// Compute evaluates the full ratio set for one period.
//
// periodData holds the end-of-period input sums and startData the opening
// balances: the previous quarter for the quarterly set, the prior year-end
// for the cumulative set. Flow figures (revenue, profit, interest, cost of
// goods sold) are stored cumulatively, so the quarterly set isolates the
// quarter by subtracting the opening value with missing figures coerced to
// zero; the cumulative set reads them as stored and keeps gaps as nil.
// daysInPeriod scales the receivables turnover into a collection-day count.
func Compute(periodData, startData map[Input]float64, cumulative bool, daysInPeriod float64) Values {
	flow := func(in Input) *float64 {
		if cumulative {
			return get(periodData, in)
		}
		v := orZero(get(periodData, in)) - orZero(get(startData, in))
		return &v
	}

	netIncome := flow(InputProfitAfterTax)
	pbt := flow(InputProfitBeforeTax)
	interestExpense := flow(InputInterestExpense)
	costOfGoodsSold := flow(InputCostOfGoodsSold)
	revenue := flow(InputNetRevenue)

	assetsEnd := get(periodData, InputTotalAssets)
	assetsStart := get(startData, InputTotalAssets)
	avgAssets := average(assetsStart, assetsEnd)

	equityEnd := get(periodData, InputEquity)
	equityStart := get(startData, InputEquity)
	avgEquity := average(equityStart, equityEnd)

	currentAssetsEnd := get(periodData, InputShortTermAssets)
	currentLiabilitiesEnd := get(periodData, InputShortTermLiabilities)

	workingCapitalEnd := orZero(currentAssetsEnd) - orZero(currentLiabilitiesEnd)
	var workingCapitalStart *float64
	if ca, cl := get(startData, InputShortTermAssets), get(startData, InputShortTermLiabilities); ca != nil && cl != nil {
		v := *ca - *cl
		workingCapitalStart = &v
	}
	avgWorkingCapital := average(workingCapitalStart, &workingCapitalEnd)

	inventoryEnd := get(periodData, InputInventory)
	inventoryStart := get(startData, InputInventory)
	var purchases *float64
	if costOfGoodsSold != nil && inventoryEnd != nil && inventoryStart != nil {
		v := *costOfGoodsSold + *inventoryEnd - *inventoryStart
		purchases = &v
	}

	totalLiabilitiesEnd := get(periodData, InputTotalLiabilities)
	avgTotalLiabilities := average(get(startData, InputTotalLiabilities), totalLiabilitiesEnd)

	receivablesEnd := orZero(get(periodData, InputShortTermReceivables)) + orZero(get(periodData, InputLongTermReceivables))
	receivablesStart := addBoth(get(startData, InputShortTermReceivables), get(startData, InputLongTermReceivables))
	avgReceivables := average(receivablesStart, &receivablesEnd)

	cashEnd := get(periodData, InputCashAndEquivalents)
	quickAssets := orZero(cashEnd) + orZero(get(periodData, InputShortTermInvestments))
	loans := orZero(get(periodData, InputShortTermLoans)) + orZero(get(periodData, InputLongTermLoans))

	ebit := addBoth(pbt, interestExpense)
	receivablesTurnover := SafeDiv(revenue, avgReceivables, 1)

	values := Values{
		"roa":                             SafeDiv(netIncome, avgAssets, 1),
		"roe":                             SafeDiv(netIncome, avgEquity, 1),
		"pbtMargin":                       SafeDiv(pbt, revenue, 1),
		"capitalAdequacyRatio":            SafeDiv(equityEnd, equityStart, 1),
		"debtCoverageRatio":               SafeDiv(equityEnd, totalLiabilitiesEnd, 1),
		"selfFinancingRatio":              SafeDiv(equityEnd, assetsEnd, 1),
		"debtToAssetRatio":                SafeDiv(totalLiabilitiesEnd, assetsEnd, 1),
		"currentAssetToTotalAssetRatio":   SafeDiv(currentAssetsEnd, assetsEnd, 1),
		"assetTurnover":                   SafeDiv(revenue, avgAssets, 1),
		"debtToEquityRatio":               SafeDiv(totalLiabilitiesEnd, equityEnd, 1),
		"loanToEquityRatio":               SafeDiv(&loans, equityEnd, 1),
		"longTermAssetSelfFinancingRatio": SafeDiv(equityEnd, get(periodData, InputLongTermAssets), 1),
		"longTermDebtRatio":               SafeDiv(get(periodData, InputLongTermDebt), equityEnd, 1),
		"workingCapitalTurnover":          SafeDiv(revenue, avgWorkingCapital, 1),
		"payablesTurnover":                SafeDiv(purchases, avgTotalLiabilities, 1),
		"receivablesTurnover":             receivablesTurnover,
		"daysSalesOutstanding":            SafeDiv(&daysInPeriod, receivablesTurnover, 1),
		"solvencyRatio":                   SafeDiv(assetsEnd, totalLiabilitiesEnd, 1),
		"quickRatio":                      SafeDiv(&quickAssets, currentLiabilitiesEnd, 1),
		"currentRatio":                    SafeDiv(currentAssetsEnd, currentLiabilitiesEnd, 1),
		"cashRatio":                       SafeDiv(cashEnd, currentLiabilitiesEnd, 1),
		"ebit":                            ebit,
		"taxBurdenRatio":                  SafeDiv(netIncome, pbt, 1),
		"interestBurdenRatio":             SafeDiv(pbt, ebit, 1),
		"ebitMargin":                      SafeDiv(ebit, revenue, 1),
		"financialLeverage":               SafeDiv(avgAssets, avgEquity, 1),
	}
	// The Dupont pane repeats two indicators under their own keys.
	values["assetTurnover_dupont"] = values["assetTurnover"]
	values["roe_dupont"] = values["roe"]
	return values
}
