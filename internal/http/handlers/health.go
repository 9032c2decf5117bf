package handlers

import (
	"net/http"
)

// Health reports liveness. It intentionally does not touch the job registry
// or providers; a saturated worker pool is still a healthy process.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
