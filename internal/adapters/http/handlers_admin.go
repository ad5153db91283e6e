package web

import (
	"net/http"
	"strconv"

	auditDomain "github.com/mergington/activities/internal/domain/audit"
)

// handleAdminAudit returns the recent roster audit trail (GET /admin/audit).
// PRE: Caller has passed the admin gate
// POST: Returns events newest first, bounded by the limit parameter
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if stores.AuditStore == nil {
		writeDetail(w, http.StatusNotFound, "Audit trail not available")
		return
	}

	// Parse limit, default to 100
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	events, err := stores.AuditStore.List(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
