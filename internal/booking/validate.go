package booking

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode"

	"github.com/Simplici0/mountbook/internal/availability"
	"github.com/Simplici0/mountbook/internal/pricing"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// ValidateSelection rejects selections the pricing engine would otherwise have to clamp.
func ValidateSelection(sel pricing.Selection) error {
	if len(sel.TVMounts) > pricing.MaxQuantity {
		return invalid("tvMounts must not list more than %d televisions", pricing.MaxQuantity)
	}
	for i, tv := range sel.TVMounts {
		switch tv.Size {
		case pricing.SizeSmall, pricing.SizeLarge:
		default:
			return invalid("tvMounts[%d].size %q is not supported", i, tv.Size)
		}
		switch tv.Location {
		case pricing.LocationStandard, pricing.LocationFireplace, pricing.LocationCeiling:
		default:
			return invalid("tvMounts[%d].location %q is not supported", i, tv.Location)
		}
		switch tv.MountHardware {
		case "", pricing.HardwareNone, pricing.HardwareFixed, pricing.HardwareTilting, pricing.HardwareFullMotion:
		default:
			return invalid("tvMounts[%d].mountHardware %q is not supported", i, tv.MountHardware)
		}
		if tv.UnmountOnly && tv.RemountOnly {
			return invalid("tvMounts[%d] cannot be both unmount-only and remount-only", i)
		}
	}
	for i, d := range sel.SmartHomeDevices {
		switch d.Type {
		case pricing.DeviceCamera, pricing.DeviceDoorbell, pricing.DeviceFloodlight:
		default:
			return invalid("smartHomeDevices[%d].type %q is not supported", i, d.Type)
		}
		if d.Quantity < 1 {
			return invalid("smartHomeDevices[%d].quantity must be at least 1", i)
		}
		if d.Quantity > pricing.MaxQuantity {
			return invalid("smartHomeDevices[%d].quantity must not exceed %d", i, pricing.MaxQuantity)
		}
		if d.BrickInstallation && d.Type != pricing.DeviceDoorbell {
			return invalid("smartHomeDevices[%d].brickInstallation only applies to doorbells", i)
		}
	}
	if sel.Deinstallations < 0 {
		return invalid("deinstallations must not be negative")
	}
	if sel.Deinstallations > pricing.MaxQuantity {
		return invalid("deinstallations must not exceed %d", pricing.MaxQuantity)
	}
	if !finiteNonNegative(sel.HandymanHours) {
		return invalid("handymanHours must be a non-negative number")
	}
	if sel.HandymanHours > pricing.MaxHandymanHours {
		return invalid("handymanHours must not exceed %d", pricing.MaxHandymanHours)
	}
	if !finiteNonNegative(sel.TravelDistanceMinutes) {
		return invalid("travelDistanceMinutes must be a non-negative number")
	}
	if sel.TravelDistanceMinutes > pricing.MaxTravelMinutes {
		return invalid("travelDistanceMinutes must not exceed %d", pricing.MaxTravelMinutes)
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// normalize trims the request and validates it, returning the canonical date and time.
func (r *Request) normalize() error {
	r.Contact.Name = strings.TrimSpace(r.Contact.Name)
	r.Contact.Email = strings.TrimSpace(r.Contact.Email)
	r.Contact.Phone = strings.TrimSpace(r.Contact.Phone)
	r.Address.Street = strings.TrimSpace(r.Address.Street)
	r.Address.City = strings.TrimSpace(r.Address.City)
	r.Address.State = strings.TrimSpace(r.Address.State)
	r.Address.Zip = strings.TrimSpace(r.Address.Zip)
	r.Notes = strings.TrimSpace(r.Notes)

	if r.Contact.Name == "" {
		return invalid("contact name is required")
	}
	if _, err := mail.ParseAddress(r.Contact.Email); err != nil {
		return invalid("contact email %q is not valid", r.Contact.Email)
	}
	if countDigits(r.Contact.Phone) < 7 {
		return invalid("contact phone must have at least 7 digits")
	}
	if r.Address.Street == "" || r.Address.City == "" || r.Address.Zip == "" {
		return invalid("street, city and zip are required")
	}

	if err := ValidateSelection(r.Selection); err != nil {
		return err
	}
	if r.Selection.Normalize().IsEmpty() {
		return invalid("select at least one service")
	}

	clock, err := availability.CanonicalClock(r.Time)
	if err != nil {
		return invalid("time %q is not valid", r.Time)
	}
	r.Time = clock
	return nil
}

func countDigits(s string) int {
	n := 0
	for _, c := range s {
		if unicode.IsDigit(c) {
			n++
		}
	}
	return n
}
