package pricing

import "math"

// TVSize is the size class of a television.
type TVSize string

const (
	SizeSmall TVSize = "small"
	SizeLarge TVSize = "large"
)

// MountLocation is where a television is mounted.
type MountLocation string

const (
	LocationStandard  MountLocation = "standard"
	LocationFireplace MountLocation = "fireplace"
	LocationCeiling   MountLocation = "ceiling"
)

// MountHardware is the mount the customer buys from us. HardwareNone means they supply their own.
type MountHardware string

const (
	HardwareNone       MountHardware = "none"
	HardwareFixed      MountHardware = "fixed"
	HardwareTilting    MountHardware = "tilting"
	HardwareFullMotion MountHardware = "full_motion"
)

// DeviceType is a kind of smart-home device.
type DeviceType string

const (
	DeviceCamera     DeviceType = "camera"
	DeviceDoorbell   DeviceType = "doorbell"
	DeviceFloodlight DeviceType = "floodlight"
)

// TVMountItem is one television in the cart.
type TVMountItem struct {
	Size              TVSize        `json:"size"`
	Location          MountLocation `json:"location"`
	MountHardware     MountHardware `json:"mountHardware"`
	NonDrywallSurface bool          `json:"nonDrywallSurface"`
	HighRise          bool          `json:"highRise"`
	OutletInstall     bool          `json:"outletInstall"`
	UnmountOnly       bool          `json:"unmountOnly"`
	RemountOnly       bool          `json:"remountOnly"`
}

// flatService reports whether the item is an unmount or remount job, which replaces every other option.
func (t TVMountItem) flatService() bool {
	return t.UnmountOnly || t.RemountOnly
}

// SmartHomeItem is a group of identical smart-home devices.
type SmartHomeItem struct {
	Type              DeviceType `json:"type"`
	Quantity          int        `json:"quantity"`
	BrickInstallation bool       `json:"brickInstallation"`
}

// Upper bounds on what one booking may carry. Normalize clamps to them so
// the engine's integer arithmetic cannot overflow.
const (
	MaxQuantity      = 100
	MaxHandymanHours = 24
	MaxTravelMinutes = 600
)

// Selection is the cart state for one booking.
type Selection struct {
	TVMounts              []TVMountItem   `json:"tvMounts"`
	SmartHomeDevices      []SmartHomeItem `json:"smartHomeDevices"`
	Deinstallations       int             `json:"deinstallations"`
	HandymanHours         float64         `json:"handymanHours"`
	TravelDistanceMinutes float64         `json:"travelDistanceMinutes"`
}

// Normalize returns a copy of the selection with every field inside its valid domain.
// Negative counts and non-finite hours become zero, counts and hours above the Max
// bounds are clamped to them, unknown enum values fall back to the plainest option,
// and device groups with no units or an unknown type are dropped.
func (s Selection) Normalize() Selection {
	mounts := s.TVMounts
	if len(mounts) > MaxQuantity {
		mounts = mounts[:MaxQuantity]
	}
	out := Selection{
		TVMounts:              make([]TVMountItem, 0, len(mounts)),
		SmartHomeDevices:      make([]SmartHomeItem, 0, len(s.SmartHomeDevices)),
		Deinstallations:       clampCount(s.Deinstallations),
		HandymanHours:         math.Min(finiteNonNegative(s.HandymanHours), MaxHandymanHours),
		TravelDistanceMinutes: math.Min(finiteNonNegative(s.TravelDistanceMinutes), MaxTravelMinutes),
	}

	for _, tv := range mounts {
		switch tv.Size {
		case SizeSmall, SizeLarge:
		default:
			tv.Size = SizeSmall
		}
		switch tv.Location {
		case LocationStandard, LocationFireplace, LocationCeiling:
		default:
			tv.Location = LocationStandard
		}
		switch tv.MountHardware {
		case HardwareNone, HardwareFixed, HardwareTilting, HardwareFullMotion:
		default:
			tv.MountHardware = HardwareNone
		}
		out.TVMounts = append(out.TVMounts, tv)
	}

	for _, d := range s.SmartHomeDevices {
		if d.Quantity < 1 {
			continue
		}
		d.Quantity = clampCount(d.Quantity)
		switch d.Type {
		case DeviceCamera, DeviceFloodlight:
			d.BrickInstallation = false
		case DeviceDoorbell:
		default:
			continue
		}
		out.SmartHomeDevices = append(out.SmartHomeDevices, d)
	}

	return out
}

// IsEmpty reports whether the selection contains nothing billable.
func (s Selection) IsEmpty() bool {
	return len(s.TVMounts) == 0 && len(s.SmartHomeDevices) == 0 && s.Deinstallations == 0 && s.HandymanHours == 0
}

// ServiceCount counts mounts, removals, each smart-home unit, and handyman labour as one unit.
func (s Selection) ServiceCount() int {
	n := len(s.TVMounts) + s.Deinstallations
	for _, d := range s.SmartHomeDevices {
		n += d.Quantity
	}
	if s.HandymanHours > 0 {
		n++
	}
	return n
}

func clampCount(n int) int {
	return max(0, min(n, MaxQuantity))
}

func finiteNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
