package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/routerelay/internal/adapters/http/api"
	"github.com/okian/routerelay/internal/adapters/provider/tomtom"
	app "github.com/okian/routerelay/internal/app"
	"github.com/okian/routerelay/internal/domain/route"
	"github.com/okian/routerelay/pkg/logger"
	"github.com/okian/routerelay/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

const truckBody = `{"origin":"52.1,4.3","destination":"52.0,4.4","vehicleType":"Truck","fuelType":"Diesel","routePreference":"Greenest"}`

// mockProvider is a stand-in for the routing provider.
type mockProvider struct {
	mu      sync.Mutex
	status  int
	body    string
	delay   time.Duration
	queries []url.Values
	paths   []string
	srv     *httptest.Server
}

func newMockProvider(status int, body string) *mockProvider {
	p := &mockProvider{status: status, body: body}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.queries = append(p.queries, r.URL.Query())
		p.paths = append(p.paths, r.URL.EscapedPath())
		delay := p.delay
		p.mu.Unlock()
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(p.status)
		_, _ = w.Write([]byte(p.body))
	}))
	return p
}

func (p *mockProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

func (p *mockProvider) lastQuery() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[len(p.queries)-1]
}

// newRelay wires the real service against the mock provider.
func newRelay(p *mockProvider, timeout time.Duration) (*http.ServeMux, *metrics.Manager) {
	m := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
	client := tomtom.New(tomtom.WithTimeout(timeout))
	svc := app.New(
		app.WithProvider(client),
		app.WithEndpoint(p.srv.URL+"/routing/1/calculateRoute"),
		app.WithAPIKey("test-key"),
		app.WithLogger(logger.Nop()),
		app.WithMetrics(m),
	)
	mux := http.NewServeMux()
	api.NewServer(svc, api.WithMetrics(m), api.WithMaxBodyBytes(1024)).Register(context.Background(), mux)
	return mux, m
}

func postRoute(mux http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/get_route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) string {
	var resp struct {
		Error string `json:"error"`
	}
	So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
	return resp.Error
}

func TestGetRoute_Relay(t *testing.T) {
	Convey("Given a relay in front of a mocked provider", t, func() {
		Convey("When the provider answers 200 with a route payload", func() {
			p := newMockProvider(http.StatusOK, `{"routes":[]}`)
			defer p.srv.Close()
			mux, _ := newRelay(p, time.Second)

			w := postRoute(mux, truckBody)

			Convey("Then the payload is returned verbatim", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `{"routes":[]}`)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				So(w.Header().Get(api.HeaderRequestID), ShouldNotBeEmpty)
			})

			Convey("And the query carries the truck and eco flags", func() {
				q := p.lastQuery()
				So(q.Get("key"), ShouldEqual, "test-key")
				So(q.Get("vehicleCommercial"), ShouldEqual, "true")
				So(q.Get("routeType"), ShouldEqual, "eco")
				So(q.Has("vehicleType"), ShouldBeFalse)
				So(p.paths[0], ShouldEqual, "/routing/1/calculateRoute/52.1,4.3:52.0,4.4/json")
			})
		})

		Convey("When the provider answers 503", func() {
			p := newMockProvider(http.StatusServiceUnavailable, `{"error":"busy"}`)
			defer p.srv.Close()
			mux, _ := newRelay(p, time.Second)

			w := postRoute(mux, truckBody)

			Convey("Then the fixed error payload is returned with 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Header().Get(api.HeaderUpstreamStatus), ShouldEqual, "503")
				So(decodeError(w), ShouldEqual, "Failed to fetch route data")
			})
		})

		Convey("When the provider answers 401", func() {
			p := newMockProvider(http.StatusUnauthorized, `{"detailedError":"bad key"}`)
			defer p.srv.Close()
			mux, _ := newRelay(p, time.Second)

			w := postRoute(mux, truckBody)

			Convey("Then the status is echoed but the body stays fixed", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Header().Get(api.HeaderUpstreamStatus), ShouldEqual, "401")
				So(w.Body.String(), ShouldNotContainSubstring, "bad key")
			})
		})

		Convey("When a Bike request prefers the fastest route", func() {
			p := newMockProvider(http.StatusOK, `{"routes":[{"summary":{}}]}`)
			defer p.srv.Close()
			mux, _ := newRelay(p, time.Second)

			w := postRoute(mux, `{"origin":"A","destination":"B","vehicleType":"Bike","fuelType":"None","routePreference":"Fastest"}`)

			Convey("Then the query has bicycle and fastest flags only", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				q := p.lastQuery()
				So(q.Get("vehicleType"), ShouldEqual, "bicycle")
				So(q.Get("routeType"), ShouldEqual, "fastest")
				So(q.Has("vehicleCommercial"), ShouldBeFalse)
				So(q.Has("vehicleEngineType"), ShouldBeFalse)
			})
		})

		Convey("When the provider is too slow", func() {
			p := newMockProvider(http.StatusOK, `{}`)
			p.delay = time.Second
			defer p.srv.Close()
			mux, _ := newRelay(p, 50*time.Millisecond)

			w := postRoute(mux, truckBody)

			Convey("Then the relay answers 504", func() {
				So(w.Code, ShouldEqual, http.StatusGatewayTimeout)
				So(decodeError(w), ShouldEqual, "route provider timed out")
			})
		})

		Convey("When the provider is unreachable", func() {
			p := newMockProvider(http.StatusOK, `{}`)
			p.srv.Close()
			mux, _ := newRelay(p, time.Second)

			w := postRoute(mux, truckBody)

			Convey("Then the relay answers 502", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeError(w), ShouldEqual, "route provider unavailable")
			})
		})

		Convey("When the provider answers 200 with a non-JSON body", func() {
			p := newMockProvider(http.StatusOK, `not json`)
			defer p.srv.Close()
			mux, _ := newRelay(p, time.Second)

			w := postRoute(mux, truckBody)

			Convey("Then the relay answers 502", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decodeError(w), ShouldEqual, "invalid response from route provider")
			})
		})
	})
}

func TestGetRoute_ClientErrors(t *testing.T) {
	Convey("Given a relay in front of a mocked provider", t, func() {
		p := newMockProvider(http.StatusOK, `{"routes":[]}`)
		defer p.srv.Close()
		mux, _ := newRelay(p, time.Second)

		Convey("When destination is missing", func() {
			w := postRoute(mux, `{"origin":"A","vehicleType":"Bike","fuelType":"None","routePreference":"Fastest"}`)

			Convey("Then it answers 400 without calling the provider", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "missing field: destination")
				So(p.calls(), ShouldEqual, 0)
			})
		})

		Convey("When a field is not a string", func() {
			w := postRoute(mux, `{"origin":"A","destination":"B","vehicleType":7,"fuelType":"None","routePreference":"Fastest"}`)

			Convey("Then it answers 400 naming the field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "field vehicleType must be a string")
				So(p.calls(), ShouldEqual, 0)
			})
		})

		Convey("When the body is malformed", func() {
			w := postRoute(mux, `{"origin":`)

			Convey("Then it answers 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "invalid JSON body")
				So(p.calls(), ShouldEqual, 0)
			})
		})

		Convey("When the body exceeds the limit", func() {
			big := `{"origin":"` + strings.Repeat("x", 2048) + `","destination":"B","vehicleType":"Car","fuelType":"Petrol","routePreference":"Fastest"}`
			w := postRoute(mux, big)

			Convey("Then it answers 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "request body too large")
				So(p.calls(), ShouldEqual, 0)
			})
		})

		Convey("When the method is GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/get_route", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it answers 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodPost)
			})
		})
	})
}

// stubService records whether the relay reached the service layer.
type stubService struct {
	called bool
}

func (s *stubService) GetRoute(_ context.Context, _ route.Request) ([]byte, error) {
	s.called = true
	return []byte(`{}`), nil
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		svc := &stubService{}
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
		mux := http.NewServeMux()
		api.NewServer(svc, api.WithMetrics(m), api.WithGatherer(registry)).Register(context.Background(), mux)

		Convey("When calling the health endpoint", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it reports ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})

		Convey("When posting to the health endpoint", func() {
			req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When scraping metrics after a request", func() {
			postRoute(mux, `{"origin":"A","destination":"B","vehicleType":"Car","fuelType":"Petrol","routePreference":"Fastest"}`)
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the HTTP counters are exposed", func() {
				So(svc.called, ShouldBeTrue)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "routerelay_relay_http_requests_total")
				So(w.Body.String(), ShouldContainSubstring, `endpoint="get_route"`)
			})
		})

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "abc-123")
			})
		})

		Convey("When calling an unknown path", func() {
			req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
