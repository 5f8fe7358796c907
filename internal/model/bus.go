package model

import "time"

// BusStatus describes whether a vehicle can be scheduled.
type BusStatus string

const (
    BusActive      BusStatus = "active"
    BusMaintenance BusStatus = "maintenance"
    BusRetired     BusStatus = "retired"
)

// Valid reports whether s is one of the known bus statuses.
func (s BusStatus) Valid() bool {
    switch s {
    case BusActive, BusMaintenance, BusRetired:
        return true
    }
    return false
}

// BusFeatures is display-only equipment information.
type BusFeatures struct {
    HasAC   bool `json:"hasAC"`
    HasWifi bool `json:"hasWifi"`
    HasUSB  bool `json:"hasUSB"`
}

// FeaturesForType maps the admin "type" shorthand onto a feature set.
// AC buses get air conditioning, Luxury buses get everything and every
// bus gets USB charging.
func FeaturesForType(busType string) BusFeatures {
    return BusFeatures{
        HasAC:   busType == "AC" || busType == "Luxury",
        HasWifi: busType == "Luxury",
        HasUSB:  true,
    }
}

// Bus is a vehicle that can be assigned to trips.  Capacity bounds the
// available seat counter of every trip the bus runs.
type Bus struct {
    ID                 uint64      `json:"id"`                 // buses.id
    RegistrationNumber string      `json:"registrationNumber"` // buses.registration_number (unique)
    Model              string      `json:"model"`              // buses.model
    Capacity           int         `json:"capacity"`           // buses.capacity
    Status             BusStatus   `json:"status"`             // buses.status
    Features           BusFeatures `json:"features"`           // buses.has_ac, has_wifi, has_usb
    CreatedAt          time.Time   `json:"createdAt"`
    UpdatedAt          time.Time   `json:"updatedAt"`
}
