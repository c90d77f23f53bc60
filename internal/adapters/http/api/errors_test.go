package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/okian/routerelay/internal/adapters/provider/tomtom"
	"github.com/okian/routerelay/internal/domain/route"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKinds(t *testing.T) {
	Convey("Given kind helpers", t, func() {
		cause := errors.New("eof")

		Convey("Then NewKind keeps the kind reachable", func() {
			err := NewKind("api.op", ErrBadRequest)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request")
		})

		Convey("Then WrapKind keeps kind and cause reachable", func() {
			err := WrapKind("api.op", ErrUpstream, cause)
			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(WrapKind("api.op", ErrUpstream, nil).Error(), ShouldEqual, "api.op: upstream failure")
		})
	})
}

func TestFailureMapping(t *testing.T) {
	Convey("Given upstream errors", t, func() {
		cases := []struct {
			err    error
			status int
		}{
			{&tomtom.StatusError{Code: 429}, http.StatusInternalServerError},
			{tomtom.ErrTimeout, http.StatusGatewayTimeout},
			{tomtom.ErrUnavailable, http.StatusBadGateway},
			{tomtom.ErrInvalidPayload, http.StatusBadGateway},
			{errors.New("other"), http.StatusInternalServerError},
		}
		for _, c := range cases {
			status, msg := upstreamFailure(c.err)
			So(status, ShouldEqual, c.status)
			So(msg, ShouldNotBeEmpty)
		}
	})

	Convey("Given decode errors", t, func() {
		status, msg, reason := decodeFailure(&route.FieldError{Field: "origin", Kind: route.ErrMissingField})
		So(status, ShouldEqual, http.StatusBadRequest)
		So(msg, ShouldEqual, "missing field: origin")
		So(reason, ShouldEqual, "missing_field")

		_, _, reason = decodeFailure(route.ErrMalformed)
		So(reason, ShouldEqual, "malformed")
	})

	Convey("Given status codes", t, func() {
		So(getErrorType(504), ShouldEqual, "upstream_timeout")
		So(getErrorType(502), ShouldEqual, "upstream_unavailable")
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(405), ShouldEqual, "method_not_allowed")
		So(getErrorType(400), ShouldEqual, "client_error")
	})
}
