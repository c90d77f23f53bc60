package probe

import "github.com/okian/routerelay/internal/domain/route"

var (
	probeVehicles    = []route.VehicleType{route.VehicleCar, route.VehicleTruck, route.VehicleBike}
	probeFuels       = []route.FuelType{route.FuelPetrol, route.FuelDiesel, route.FuelElectric}
	probePreferences = []route.Preference{route.PreferenceFastest, route.PreferenceGreenest}
)

// Matrix returns one request per vehicle, fuel and preference combination,
// repeated repeat times.
func Matrix(origin, destination string, repeat int) []route.Request {
	if repeat < 1 {
		repeat = 1
	}
	out := make([]route.Request, 0, len(probeVehicles)*len(probeFuels)*len(probePreferences)*repeat)
	for i := 0; i < repeat; i++ {
		for _, v := range probeVehicles {
			for _, f := range probeFuels {
				for _, p := range probePreferences {
					out = append(out, route.Request{
						Origin:          origin,
						Destination:     destination,
						VehicleType:     v,
						FuelType:        f,
						RoutePreference: p,
					})
				}
			}
		}
	}
	return out
}
