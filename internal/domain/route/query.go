package route

import (
	"net/url"
	"strings"
)

// Provider query parameter names and values.
const (
	paramKey               = "key"
	paramVehicleCommercial = "vehicleCommercial"
	paramVehicleType       = "vehicleType"
	paramRouteType         = "routeType"
	paramEngineType        = "vehicleEngineType"

	responseFormat = "json"
	redactedKey    = "REDACTED"
)

// Param is one query-string fragment.
type Param struct {
	Name  string
	Value string
}

// Query is the provider request derived from a Request. Params keep the
// order they were appended in, with the API key first.
type Query struct {
	Endpoint    string
	Origin      string
	Destination string
	APIKey      string
	Params      []Param
}

// QueryOption tweaks query construction.
type QueryOption func(*queryOptions)

type queryOptions struct {
	forwardFuelType bool
}

// WithFuelType forwards the fuel type as a vehicleEngineType parameter.
func WithFuelType(enabled bool) QueryOption {
	return func(o *queryOptions) { o.forwardFuelType = enabled }
}

// BuildQuery maps a Request onto the provider's calculateRoute parameters.
// The vehicle and route-type blocks are independent of each other.
func BuildQuery(endpoint, apiKey string, req Request, opts ...QueryOption) Query {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}

	q := Query{
		Endpoint:    strings.TrimRight(endpoint, "/"),
		Origin:      req.Origin,
		Destination: req.Destination,
		APIKey:      apiKey,
	}

	switch req.VehicleType {
	case VehicleTruck:
		q.Params = append(q.Params, Param{paramVehicleCommercial, "true"})
	case VehicleBike:
		q.Params = append(q.Params, Param{paramVehicleType, "bicycle"})
	}

	switch req.RoutePreference {
	case PreferenceGreenest:
		q.Params = append(q.Params, Param{paramRouteType, "eco"})
	case PreferenceFastest:
		q.Params = append(q.Params, Param{paramRouteType, "fastest"})
	}

	if o.forwardFuelType {
		switch req.FuelType {
		case FuelElectric:
			q.Params = append(q.Params, Param{paramEngineType, "electric"})
		case FuelPetrol, FuelDiesel:
			q.Params = append(q.Params, Param{paramEngineType, "combustion"})
		}
	}

	return q
}

// Has reports whether the query carries name=value.
func (q Query) Has(name, value string) bool {
	for _, p := range q.Params {
		if p.Name == name && p.Value == value {
			return true
		}
	}
	return false
}

// Lookup returns the value of the first parameter called name.
func (q Query) Lookup(name string) (string, bool) {
	for _, p := range q.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// URL renders the full provider URL including the API key.
func (q Query) URL() string {
	return q.render(q.APIKey)
}

// Redacted renders the URL with the API key masked. Use it for logs.
func (q Query) Redacted() string {
	key := q.APIKey
	if key != "" {
		key = redactedKey
	}
	return q.render(key)
}

func (q Query) String() string { return q.Redacted() }

func (q Query) render(key string) string {
	var b strings.Builder
	b.WriteString(q.Endpoint)
	b.WriteByte('/')
	b.WriteString(escapeLocation(q.Origin))
	b.WriteByte(':')
	b.WriteString(escapeLocation(q.Destination))
	b.WriteByte('/')
	b.WriteString(responseFormat)
	b.WriteByte('?')
	b.WriteString(paramKey)
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(key))
	for _, p := range q.Params {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(p.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// locationUnescaper restores the separators the provider reads literally.
var locationUnescaper = strings.NewReplacer("%2C", ",", "%3A", ":")

func escapeLocation(s string) string {
	return locationUnescaper.Replace(url.PathEscape(s))
}
