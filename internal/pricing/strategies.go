package pricing

import (
	"fmt"
	"math"
)

// Category names, in breakdown order.
const (
	CategoryMounting  = "TV Mounting"
	CategoryHardware  = "Mount Hardware"
	CategoryWiring    = "Wire Concealment"
	CategorySmartHome = "Smart Home"
	CategoryRemoval   = "TV Removal"
	CategoryHandyman  = "Handyman"
	CategoryTravel    = "Travel"
)

// Strategy prices one category of a normalized selection. It returns the category lines and
// any items that could not be priced automatically.
type Strategy struct {
	Category string
	Price    func(sel Selection, table PriceTable) (lines []Line, manual []string)
}

// lineSet merges lines with the same name and unit price, keeping first-seen order.
type lineSet struct {
	lines []Line
}

func (s *lineSet) add(e PriceEntry, qty int) {
	if qty <= 0 {
		return
	}
	for i := range s.lines {
		if s.lines[i].Name == e.Name && s.lines[i].UnitPrice == e.Price {
			s.lines[i].Quantity += qty
			s.lines[i].LineTotal = s.lines[i].UnitPrice * Money(s.lines[i].Quantity)
			return
		}
	}
	s.lines = append(s.lines, Line{
		Name:      e.Name,
		UnitPrice: e.Price,
		Quantity:  qty,
		LineTotal: e.Price * Money(qty),
	})
}

func priceMounting(sel Selection, table PriceTable) ([]Line, []string) {
	var set lineSet
	m := table.Mounting
	for _, tv := range sel.TVMounts {
		if tv.UnmountOnly {
			set.add(m.Unmount, 1)
			continue
		}
		if tv.RemountOnly {
			set.add(m.Remount, 1)
			continue
		}

		switch tv.Location {
		case LocationFireplace:
			set.add(m.Fireplace, 1)
		case LocationCeiling:
			set.add(m.Ceiling, 1)
		default:
			set.add(m.Standard, 1)
		}
		if tv.NonDrywallSurface {
			set.add(m.NonDrywall, 1)
		}
		if tv.HighRise {
			set.add(m.HighRise, 1)
		}
	}
	return set.lines, nil
}

func priceHardware(sel Selection, table PriceTable) ([]Line, []string) {
	var set lineSet
	for _, tv := range sel.TVMounts {
		if tv.flatService() {
			continue
		}
		if e, ok := table.Hardware.Lookup(tv.Size, tv.MountHardware); ok {
			set.add(e, 1)
		}
	}
	return set.lines, nil
}

func priceWiring(sel Selection, table PriceTable) ([]Line, []string) {
	var set lineSet
	var manual []string
	for i, tv := range sel.TVMounts {
		if tv.flatService() || !tv.OutletInstall {
			continue
		}
		if tv.Location == LocationFireplace {
			manual = append(manual, fmt.Sprintf("TV #%d: outlet installation above a fireplace is quoted on site", i+1))
			continue
		}
		set.add(table.Wiring.Outlet, 1)
	}
	return set.lines, manual
}

func priceSmartHome(sel Selection, table PriceTable) ([]Line, []string) {
	var set lineSet
	for _, d := range sel.SmartHomeDevices {
		e, ok := table.SmartHome.Lookup(d.Type)
		if !ok {
			continue
		}
		set.add(e, d.Quantity)
		if d.Type == DeviceDoorbell && d.BrickInstallation {
			set.add(table.SmartHome.BrickSurcharge, d.Quantity)
		}
	}
	return set.lines, nil
}

func priceRemoval(sel Selection, table PriceTable) ([]Line, []string) {
	var set lineSet
	set.add(table.Removal.Deinstall, sel.Deinstallations)
	return set.lines, nil
}

// nanoHalves is the resolution overtime is counted in: one billionth of a half hour.
const nanoHalves = 1_000_000_000

// extraHalfHours is the number of started half hours beyond the first hour. Overtime is
// rounded to the nearest billionth of a half hour before the ceiling, so float noise at
// exact boundaries like 1.5 does not start another half hour and any overage that survives
// the rounding always does. Hours must already be clamped to MaxHandymanHours.
func extraHalfHours(hours float64) int {
	if hours <= 1 {
		return 0
	}
	units := int64(math.Round((hours - 1) * 2 * nanoHalves))
	return int((units + nanoHalves - 1) / nanoHalves)
}

func priceHandyman(sel Selection, table PriceTable) ([]Line, []string) {
	if sel.HandymanHours <= 0 {
		return nil, nil
	}
	var set lineSet
	set.add(table.Handyman.FirstHour, 1)
	set.add(table.Handyman.HalfHour, extraHalfHours(sel.HandymanHours))
	return set.lines, nil
}

func travelStrategy(p TravelPricer) Strategy {
	return Strategy{
		Category: CategoryTravel,
		Price: func(sel Selection, table PriceTable) ([]Line, []string) {
			if sel.IsEmpty() {
				return nil, nil
			}
			fee := p.TravelFee(sel.TravelDistanceMinutes, table)
			if fee <= 0 {
				return nil, nil
			}
			var set lineSet
			set.add(PriceEntry{Name: "Travel Fee", Price: fee}, 1)
			return set.lines, nil
		},
	}
}

// DefaultStrategies returns the stock category pricers in breakdown order.
func DefaultStrategies(travel TravelPricer) []Strategy {
	return []Strategy{
		{Category: CategoryMounting, Price: priceMounting},
		{Category: CategoryHardware, Price: priceHardware},
		{Category: CategoryWiring, Price: priceWiring},
		{Category: CategorySmartHome, Price: priceSmartHome},
		{Category: CategoryRemoval, Price: priceRemoval},
		{Category: CategoryHandyman, Price: priceHandyman},
		travelStrategy(travel),
	}
}
