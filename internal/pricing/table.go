package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidTable is returned when a price table fails validation.
var ErrInvalidTable = errors.New("invalid price table")

// PriceEntry is one priced item of the table.
type PriceEntry struct {
	Name        string `json:"name"`
	Price       Money  `json:"price"`
	Description string `json:"description,omitempty"`
}

// MountingPrices holds base mount prices by location plus per-TV surcharges and flat services.
type MountingPrices struct {
	Standard   PriceEntry `json:"standard"`
	Fireplace  PriceEntry `json:"fireplace"`
	Ceiling    PriceEntry `json:"ceiling"`
	NonDrywall PriceEntry `json:"nonDrywall"`
	HighRise   PriceEntry `json:"highRise"`
	Unmount    PriceEntry `json:"unmount"`
	Remount    PriceEntry `json:"remount"`
}

// HardwarePrices holds the mount prices for one TV size.
type HardwarePrices struct {
	Fixed      PriceEntry `json:"fixed"`
	Tilting    PriceEntry `json:"tilting"`
	FullMotion PriceEntry `json:"fullMotion"`
}

// HardwareTable is keyed by TV size.
type HardwareTable struct {
	Small HardwarePrices `json:"small"`
	Large HardwarePrices `json:"large"`
}

// Lookup returns the entry for size and hardware. ok is false for HardwareNone.
func (h HardwareTable) Lookup(size TVSize, hw MountHardware) (PriceEntry, bool) {
	prices := h.Small
	if size == SizeLarge {
		prices = h.Large
	}
	switch hw {
	case HardwareFixed:
		return prices.Fixed, true
	case HardwareTilting:
		return prices.Tilting, true
	case HardwareFullMotion:
		return prices.FullMotion, true
	}
	return PriceEntry{}, false
}

type WiringPrices struct {
	Outlet PriceEntry `json:"outlet"`
}

type SmartHomePrices struct {
	Camera         PriceEntry `json:"camera"`
	Doorbell       PriceEntry `json:"doorbell"`
	Floodlight     PriceEntry `json:"floodlight"`
	BrickSurcharge PriceEntry `json:"brickSurcharge"`
}

// Lookup returns the unit entry for a device type.
func (s SmartHomePrices) Lookup(t DeviceType) (PriceEntry, bool) {
	switch t {
	case DeviceCamera:
		return s.Camera, true
	case DeviceDoorbell:
		return s.Doorbell, true
	case DeviceFloodlight:
		return s.Floodlight, true
	}
	return PriceEntry{}, false
}

type RemovalPrices struct {
	Deinstall PriceEntry `json:"deinstall"`
}

// HandymanPrices bills the first hour as a minimum and later time per started half hour.
type HandymanPrices struct {
	FirstHour PriceEntry `json:"firstHour"`
	HalfHour  PriceEntry `json:"halfHour"`
}

// TravelPrices charges PerMinute for every minute beyond FreeMinutes.
type TravelPrices struct {
	FreeMinutes float64 `json:"freeMinutes"`
	PerMinute   Money   `json:"perMinute"`
}

// ComboDiscount is a fixed amount taken off when mounting and removal are booked together.
type ComboDiscount struct {
	Name        string `json:"name"`
	Amount      Money  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// BulkDiscount is a percentage taken off once the cart reaches MinServices services.
type BulkDiscount struct {
	Name        string  `json:"name"`
	Percent     float64 `json:"percent"`
	MinServices int     `json:"minServices"`
	Description string  `json:"description,omitempty"`
}

type DiscountTable struct {
	Combo ComboDiscount `json:"combo"`
	Bulk  BulkDiscount  `json:"bulk"`
}

// PriceTable is the complete pricing configuration consumed by the engine.
type PriceTable struct {
	Currency  string          `json:"currency"`
	Mounting  MountingPrices  `json:"mounting"`
	Hardware  HardwareTable   `json:"hardware"`
	Wiring    WiringPrices    `json:"wiring"`
	SmartHome SmartHomePrices `json:"smartHome"`
	Removal   RemovalPrices   `json:"removal"`
	Handyman  HandymanPrices  `json:"handyman"`
	Travel    TravelPrices    `json:"travel"`
	Discounts DiscountTable   `json:"discounts"`
}

func entry(name string, dollars int64, description string) PriceEntry {
	return PriceEntry{Name: name, Price: Dollars(dollars), Description: description}
}

// DefaultTable returns the stock price list. Every call returns a fresh value.
func DefaultTable() PriceTable {
	return PriceTable{
		Currency: "USD",
		Mounting: MountingPrices{
			Standard:   entry("Standard TV Mount", 100, "Drywall mount on a standard wall"),
			Fireplace:  entry("Fireplace TV Mount", 200, "Mount above a fireplace"),
			Ceiling:    entry("Ceiling TV Mount", 175, "Ceiling-hung mount"),
			NonDrywall: entry("Non-Drywall Surface", 50, "Brick, stone, tile or concrete"),
			HighRise:   entry("High-Rise Installation", 25, "Mount height above standard ladder reach"),
			Unmount:    entry("TV Unmount", 50, "Take a mounted TV down, no new mount"),
			Remount:    entry("TV Remount", 75, "Re-hang a TV on an existing mount"),
		},
		Hardware: HardwareTable{
			Small: HardwarePrices{
				Fixed:      entry("Fixed Mount (up to 55\")", 40, ""),
				Tilting:    entry("Tilting Mount (up to 55\")", 50, ""),
				FullMotion: entry("Full-Motion Mount (up to 55\")", 80, ""),
			},
			Large: HardwarePrices{
				Fixed:      entry("Fixed Mount (56\" and up)", 60, ""),
				Tilting:    entry("Tilting Mount (56\" and up)", 70, ""),
				FullMotion: entry("Full-Motion Mount (56\" and up)", 100, ""),
			},
		},
		Wiring: WiringPrices{
			Outlet: entry("Wire Concealment & Outlet", 100, "In-wall power outlet and cable concealment"),
		},
		SmartHome: SmartHomePrices{
			Camera:         entry("Security Camera", 75, ""),
			Doorbell:       entry("Video Doorbell", 75, ""),
			Floodlight:     entry("Floodlight Camera", 100, ""),
			BrickSurcharge: entry("Brick Installation", 10, "Doorbell mounted on brick"),
		},
		Removal: RemovalPrices{
			Deinstall: entry("TV De-installation", 50, "Remove TV and mount, any size or wall"),
		},
		Handyman: HandymanPrices{
			FirstHour: entry("Handyman (first hour)", 100, "Minimum charge"),
			HalfHour:  entry("Handyman (additional half hour)", 50, ""),
		},
		Travel: TravelPrices{FreeMinutes: 30},
		Discounts: DiscountTable{
			Combo: ComboDiscount{Name: "Mount + Removal Combo", Amount: Dollars(25), Description: "TV mounting booked with a de-installation"},
			Bulk:  BulkDiscount{Name: "Multi-Service Discount", Percent: 10, MinServices: 3, Description: "10% off three or more services"},
		},
	}
}

// Validate checks that every price is non-negative and the discounts are well formed.
func (t PriceTable) Validate() error {
	if t.Currency == "" {
		return fmt.Errorf("%w: currency is required", ErrInvalidTable)
	}
	for _, e := range t.entries() {
		if e.Price < 0 {
			return fmt.Errorf("%w: %q has a negative price", ErrInvalidTable, e.Name)
		}
	}
	if t.Travel.FreeMinutes < 0 || t.Travel.PerMinute < 0 {
		return fmt.Errorf("%w: travel rates must be non-negative", ErrInvalidTable)
	}
	if t.Discounts.Combo.Amount < 0 {
		return fmt.Errorf("%w: combo discount must be non-negative", ErrInvalidTable)
	}
	if t.Discounts.Bulk.Percent < 0 || t.Discounts.Bulk.Percent > 100 {
		return fmt.Errorf("%w: bulk discount percent must be between 0 and 100", ErrInvalidTable)
	}
	if t.Discounts.Bulk.MinServices < 1 {
		return fmt.Errorf("%w: bulk discount needs at least one service", ErrInvalidTable)
	}
	return nil
}

func (t PriceTable) entries() []PriceEntry {
	return []PriceEntry{
		t.Mounting.Standard, t.Mounting.Fireplace, t.Mounting.Ceiling,
		t.Mounting.NonDrywall, t.Mounting.HighRise, t.Mounting.Unmount, t.Mounting.Remount,
		t.Hardware.Small.Fixed, t.Hardware.Small.Tilting, t.Hardware.Small.FullMotion,
		t.Hardware.Large.Fixed, t.Hardware.Large.Tilting, t.Hardware.Large.FullMotion,
		t.Wiring.Outlet,
		t.SmartHome.Camera, t.SmartHome.Doorbell, t.SmartHome.Floodlight, t.SmartHome.BrickSurcharge,
		t.Removal.Deinstall,
		t.Handyman.FirstHour, t.Handyman.HalfHour,
	}
}

// ParseTable decodes and validates a JSON price table. Unknown fields are rejected.
func ParseTable(data []byte) (PriceTable, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var t PriceTable
	if err := dec.Decode(&t); err != nil {
		return PriceTable{}, fmt.Errorf("%w: decode: %v", ErrInvalidTable, err)
	}
	if err := t.Validate(); err != nil {
		return PriceTable{}, err
	}
	return t, nil
}
