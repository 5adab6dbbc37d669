package route

import (
	"net/http"

	"eventdesk/src-server/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// The whole HTTP surface: every route plus the request and CORS middleware.
func NewHandler(as *utils.AppState) http.Handler {
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	Events(muxer, as)
	Attendees(muxer, as)
	Tasks(muxer, as)
	Register(muxer, as)
	return RequestMiddleware(CORSMiddleware(as, muxer))
}
