// Package route holds the relay's request model and the provider query
// derived from it.
package route

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// VehicleType is the caller's vehicle selection.
type VehicleType string

// Known vehicle types. Anything else is passed through as the provider default.
const (
	VehicleCar   VehicleType = "Car"
	VehicleTruck VehicleType = "Truck"
	VehicleBike  VehicleType = "Bike"
)

// FuelType is accepted on every request but only forwarded when enabled.
type FuelType string

// Known fuel types.
const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
)

// Preference is the optimisation goal of the route.
type Preference string

// Known route preferences.
const (
	PreferenceFastest  Preference = "Fastest"
	PreferenceGreenest Preference = "Greenest"
)

// labelOther stands in for any value outside a known set.
const labelOther = "other"

// Label returns v when it is a known vehicle type and "other" otherwise, so
// caller input never widens a metric's label set.
func (v VehicleType) Label() string {
	switch v {
	case VehicleCar, VehicleTruck, VehicleBike:
		return string(v)
	default:
		return labelOther
	}
}

// Label returns p when it is a known preference and "other" otherwise.
func (p Preference) Label() string {
	switch p {
	case PreferenceFastest, PreferenceGreenest:
		return string(p)
	default:
		return labelOther
	}
}

// Request is one inbound routing request.
type Request struct {
	Origin          string      `json:"origin"`
	Destination     string      `json:"destination"`
	VehicleType     VehicleType `json:"vehicleType"`
	FuelType        FuelType    `json:"fuelType"`
	RoutePreference Preference  `json:"routePreference"`
}

// requiredFields lists the body keys in the order they are checked.
var requiredFields = []string{"origin", "destination", "vehicleType", "fuelType", "routePreference"}

// Decode reads exactly one JSON object from r and requires every request key to be
// present with a string value. Values themselves are not checked.
func Decode(r io.Reader) (Request, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if raw == nil {
		return Request{}, fmt.Errorf("%w: body must be a JSON object", ErrMalformed)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Request{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformed)
	}

	vals := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		msg, ok := raw[name]
		if !ok {
			return Request{}, &FieldError{Field: name, Kind: ErrMissingField}
		}
		var s string
		if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			return Request{}, &FieldError{Field: name, Kind: ErrInvalidField}
		}
		if err := json.Unmarshal(msg, &s); err != nil {
			return Request{}, &FieldError{Field: name, Kind: ErrInvalidField}
		}
		vals[name] = s
	}

	return Request{
		Origin:          vals["origin"],
		Destination:     vals["destination"],
		VehicleType:     VehicleType(vals["vehicleType"]),
		FuelType:        FuelType(vals["fuelType"]),
		RoutePreference: Preference(vals["routePreference"]),
	}, nil
}
