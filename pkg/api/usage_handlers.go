package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pkgindex/pkgindex/pkg/httputil"
	"github.com/pkgindex/pkgindex/pkg/metering"
)

// UsageHandlers serves internal-only usage reports from the metering store
type UsageHandlers struct {
	meter *metering.Meter
}

// periodUsage handles GET /api/usage/{period}, period formatted "2006-01"
func (h *UsageHandlers) periodUsage(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["period"]

	parsed, err := time.Parse("2006-01", raw)
	if err != nil {
		httputil.WriteBadRequest(w, fmt.Sprintf("invalid period %q, expected YYYY-MM", raw))
		return
	}
	period := metering.Period{Year: parsed.Year(), Month: parsed.Month()}

	usage, err := h.meter.PeriodUsage(r.Context(), period)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"period": period.String(),
		"usage":  usage,
	})
}
