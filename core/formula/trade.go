package formula

import (
	"math"
	"strings"

	"didp/core/utils"
)

// Commission is |value| * rate bounded below by minFee and, when maxFee is
// positive, above by maxFee.
func Commission(value, rate, minFee, maxFee float64) float64 {
	c := math.Max(math.Abs(value)*rate, minFee)
	if maxFee > 0 {
		c = math.Min(c, maxFee)
	}
	return Round(c, 2)
}

func GrossValue(quantity, price float64) float64 {
	return Round(quantity*price, 2)
}

// NetValue adds costs to gross for buys and subtracts them for sells.
func NetValue(gross, commission, fees, taxes float64, side string) float64 {
	costs := commission + fees + taxes
	if strings.EqualFold(side, "sell") {
		return Round(gross-costs, 2)
	}
	return Round(gross+costs, 2)
}

func EffectivePrice(net, quantity float64) float64 {
	if quantity == 0 {
		return 0
	}
	return Round(net/quantity, 4)
}

func RealizedPnL(sellValue, costBasis float64) float64 {
	return Round(sellValue-costBasis, 2)
}

func UnrealizedPnL(quantity, avgCost, price float64) float64 {
	return Round(quantity*(price-avgCost), 2)
}

func PnLPercentage(pnl, costBasis float64) float64 {
	if costBasis == 0 {
		return 0
	}
	return Round(pnl/math.Abs(costBasis)*100, 2)
}

// WeightedAvgCost is sum(qty*price)/sum(qty) over the dataset.
func WeightedAvgCost(d *Dataset, qtyCol, priceCol string) float64 {
	qi, pi := d.ColumnIndex(qtyCol), d.ColumnIndex(priceCol)
	if qi < 0 || pi < 0 {
		return 0
	}
	var qty, value float64
	for _, r := range d.Rows {
		q, _ := utils.ToFloat(cell(r, qi))
		p, _ := utils.ToFloat(cell(r, pi))
		qty += q
		value += q * p
	}
	if qty == 0 {
		return 0
	}
	return Round(value/qty, 4)
}

// FXConvert multiplies amount by rate, or divides when direction is "divide".
func FXConvert(amount, rate float64, direction string) float64 {
	if strings.EqualFold(direction, "divide") {
		if rate == 0 {
			return 0
		}
		return Round(amount/rate, 2)
	}
	return Round(amount*rate, 2)
}

func CrossRate(rate1, rate2 float64) float64 {
	if rate2 == 0 {
		return 0
	}
	return Round(rate1/rate2, 6)
}

func FXGainLoss(amount, originalRate, currentRate float64) float64 {
	return Round(amount*currentRate-amount*originalRate, 2)
}
