package pricing

// Line is one priced row of a category.
type Line struct {
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal Money  `json:"lineTotal"`
}

// Category groups the lines of one service category.
type Category struct {
	Name  string `json:"name"`
	Lines []Line `json:"lines"`
}

// Total sums the category's lines.
func (c Category) Total() Money {
	var total Money
	for _, l := range c.Lines {
		total += l.LineTotal
	}
	return total
}

// Discount is a reduction applied to the subtotal.
type Discount struct {
	Name        string `json:"name"`
	Amount      Money  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Quote is the full pricing output for a selection.
type Quote struct {
	Currency         string     `json:"currency"`
	Breakdown        []Category `json:"breakdown"`
	Subtotal         Money      `json:"subtotal"`
	AppliedDiscounts []Discount `json:"appliedDiscounts"`
	Total            Money      `json:"total"`
	// ManualReview lists requested work that has to be priced by hand and is not in Total.
	ManualReview []string `json:"manualReview,omitempty"`
}

// Category returns the named category of the breakdown.
func (q Quote) Category(name string) (Category, bool) {
	for _, c := range q.Breakdown {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Engine aggregates category strategies into a quote.
type Engine struct {
	strategies []Strategy
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	travel     TravelPricer
	strategies []Strategy
}

// WithTravelPricer replaces the travel surcharge rule.
func WithTravelPricer(p TravelPricer) Option {
	return func(o *engineOptions) { o.travel = p }
}

// WithStrategies replaces the whole strategy list.
func WithStrategies(s ...Strategy) Option {
	return func(o *engineOptions) { o.strategies = s }
}

// NewEngine builds an engine with the default strategies unless overridden.
func NewEngine(opts ...Option) *Engine {
	o := engineOptions{travel: PerMinuteTravel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.strategies == nil {
		o.strategies = DefaultStrategies(o.travel)
	}
	return &Engine{strategies: o.strategies}
}

var defaultEngine = NewEngine()

// Calculate prices a selection against table with the default engine.
func Calculate(sel Selection, table PriceTable) Quote {
	return defaultEngine.Calculate(sel, table)
}

// Calculate prices a selection against table. It never fails: out-of-range input is normalized
// first and contributes nothing.
func (e *Engine) Calculate(sel Selection, table PriceTable) Quote {
	sel = sel.Normalize()

	quote := Quote{
		Currency:         table.Currency,
		Breakdown:        []Category{},
		AppliedDiscounts: []Discount{},
	}

	for _, s := range e.strategies {
		lines, manual := s.Price(sel, table)
		quote.ManualReview = append(quote.ManualReview, manual...)
		if len(lines) == 0 {
			continue
		}
		c := Category{Name: s.Category, Lines: lines}
		quote.Breakdown = append(quote.Breakdown, c)
		quote.Subtotal += c.Total()
	}

	var discounted Money
	if d, ok := selectDiscount(sel, quote.Subtotal, table.Discounts); ok {
		quote.AppliedDiscounts = append(quote.AppliedDiscounts, d)
		discounted = d.Amount
	}
	quote.Total = maxMoney(0, quote.Subtotal-discounted)

	return quote
}

// selectDiscount picks at most one discount. The combo rule wins over the bulk rule.
func selectDiscount(sel Selection, subtotal Money, table DiscountTable) (Discount, bool) {
	if len(sel.TVMounts) > 0 && sel.Deinstallations > 0 {
		c := table.Combo
		if c.Amount <= 0 {
			return Discount{}, false
		}
		return Discount{Name: c.Name, Amount: c.Amount, Description: c.Description}, true
	}

	b := table.Bulk
	if b.MinServices < 1 || sel.ServiceCount() < b.MinServices {
		return Discount{}, false
	}
	amount := percentRounded(subtotal, b.Percent)
	if amount <= 0 {
		return Discount{}, false
	}
	return Discount{Name: b.Name, Amount: amount, Description: b.Description}, true
}
