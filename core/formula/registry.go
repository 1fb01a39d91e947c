package formula

import "sort"

// Registry returns every helper keyed by its lowercase spreadsheet-style
// name. Optional trailing arguments default to their zero value, so
// signatures are arranged for zero to mean the usual default.
func Registry() map[string]any {
	return map[string]any{
		// text
		"left":       Left,
		"right":      Right,
		"mid":        Mid,
		"trim":       Trim,
		"len":        Len,
		"upper":      Upper,
		"lower":      Lower,
		"proper":     Proper,
		"concat":     Concat,
		"textjoin":   TextJoin,
		"find":       Find,
		"search":     Search,
		"substitute": Substitute,
		"replace":    Replace,
		"rept":       Rept,
		"split":      Split,
		"splitpart":  SplitPart,

		// conditional and logic
		"if":      If,
		"iferror": IfError,
		"ifs":     Ifs,
		"switch":  Switch,
		"choose":  Choose,
		"and":     And,
		"or":      Or,
		"not":     Not,
		"xor":     Xor,

		// dataset aggregates
		"sum":     Sum,
		"average": Average,
		"median":  Median,
		"stdev":   StdDev,
		"count":   Count,
		"counta":  CountA,
		"max":     Max,
		"min":     Min,
		"sumif":   SumIf,
		"countif": CountIf,
		"vlookup": func(value any, d *Dataset, colIndex int, approximate bool) any {
			return VLookup(value, d, colIndex, !approximate)
		},
		"indexmatch": IndexMatch,

		// reconciliation
		"round":          Round,
		"variance":       Variance,
		"variancepct":    VariancePct,
		"ismatched":      IsMatched,
		"matchstatus":    MatchStatus,
		"tolerancematch": ToleranceMatch,
		"breaksummary":   SummarizeBreaks,

		// trade, pnl and fx
		"commission":      Commission,
		"grossvalue":      GrossValue,
		"netvalue":        NetValue,
		"effectiveprice":  EffectivePrice,
		"realizedpnl":     RealizedPnL,
		"unrealizedpnl":   UnrealizedPnL,
		"pnlpercentage":   PnLPercentage,
		"weightedavgcost": WeightedAvgCost,
		"fxconvert":       FXConvert,
		"crossrate":       CrossRate,
		"fxgainloss":      FXGainLoss,

		// settlement
		"settlementdate":   SettlementDate,
		"daystosettlement": DaysToSettlement,
		"daycountfraction": DayCountFraction,
		"accruedinterest":  AccruedInterest,
		"cleanprice":       CleanPrice,
		"dirtyprice":       DirtyPrice,
	}
}

// Names lists the registry keys in sorted order.
func Names() []string {
	reg := Registry()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
