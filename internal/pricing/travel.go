package pricing

import "math"

// TravelPricer computes the travel surcharge for a job.
type TravelPricer interface {
	TravelFee(minutes float64, table PriceTable) Money
}

// TravelPricerFunc adapts a function to TravelPricer.
type TravelPricerFunc func(minutes float64, table PriceTable) Money

func (f TravelPricerFunc) TravelFee(minutes float64, table PriceTable) Money {
	return f(minutes, table)
}

// PerMinuteTravel charges table.Travel.PerMinute for each started minute past FreeMinutes.
// With the stock table PerMinute is zero, so travel is never billed.
var PerMinuteTravel TravelPricer = TravelPricerFunc(func(minutes float64, table PriceTable) Money {
	over := minutes - table.Travel.FreeMinutes
	if over <= 0 || table.Travel.PerMinute <= 0 {
		return 0
	}
	return Money(math.Ceil(over)) * table.Travel.PerMinute
})

// NoTravel never charges for travel.
var NoTravel TravelPricer = TravelPricerFunc(func(float64, PriceTable) Money { return 0 })
