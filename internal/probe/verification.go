package probe

import (
	"fmt"
	"net/http"
)

// verify flags answers the relay should never give to a well-formed request.
// Upstream failures (500/502/504) are reported but not treated as probe errors.
func verify(r Report) error {
	if len(r.Results) == 0 {
		return fmt.Errorf("no probe results")
	}
	for _, res := range r.Results {
		switch res.Status {
		case http.StatusOK, http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		case 0:
			return fmt.Errorf("request %s got no response: %s", res.RequestID, res.Error)
		default:
			return fmt.Errorf("request %s (%s/%s/%s) answered %d: %s",
				res.RequestID, res.Request.VehicleType, res.Request.FuelType, res.Request.RoutePreference,
				res.Status, res.Error)
		}
	}
	return nil
}
