package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorCode(t *testing.T) {
	Convey("Given failing statuses", t, func() {
		Convey("Then each maps to the code used in error bodies", func() {
			So(errorCode(http.StatusBadRequest), ShouldEqual, codeBadRequest)
			So(errorCode(http.StatusNotFound), ShouldEqual, codeNotFound)
			So(errorCode(http.StatusConflict), ShouldEqual, codeSquadIncomplete)
			So(errorCode(http.StatusUnprocessableEntity), ShouldEqual, codeInvalidLock)
			So(errorCode(http.StatusBadGateway), ShouldEqual, codeUpstream)
			So(errorCode(http.StatusServiceUnavailable), ShouldEqual, codeUnavailable)
			So(errorCode(http.StatusGatewayTimeout), ShouldEqual, codeInternal)
			So(errorCode(http.StatusMethodNotAllowed), ShouldEqual, "client_error")
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler that writes twice", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.WriteHeader(http.StatusOK)
		}, "test")

		Convey("Then the first status is the one recorded and sent", func() {
			rec := httptest.NewRecorder()
			So(func() { h(rec, httptest.NewRequest(http.MethodGet, "/test", nil)) }, ShouldNotPanic)
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})
	})
}

type staticStats map[string]interface{}

func (s staticStats) GetStats() map[string]interface{} { return s }

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler started ninety seconds ago", t, func() {
		provider := staticStats{"builds": 3}
		h := NewStatsHandler(provider)
		h.now = func() time.Time { return h.started.Add(90*time.Second + 400*time.Millisecond) }

		rec := httptest.NewRecorder()
		h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		Convey("Then uptime is reported in whole seconds", func() {
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"uptimeSeconds":90`)
			So(rec.Body.String(), ShouldContainSubstring, `"builds":3`)
		})

		Convey("Then the provider map is not modified", func() {
			So(provider, ShouldNotContainKey, "uptimeSeconds")
		})
	})
}
