package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker reports whether one dependency is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// DatabaseHealthChecker pings the circular store.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthReport struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]checkResult `json:"checks"`
}

// HealthHandler runs every registered checker and reports 503 if any fails.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := healthReport{
			Status:    "healthy",
			Timestamp: time.Now(),
			Checks:    make(map[string]checkResult, len(checkers)),
		}
		code := http.StatusOK
		for name, c := range checkers {
			res := checkResult{Status: "healthy"}
			if err := c.Check(ctx); err != nil {
				res = checkResult{Status: "unhealthy", Error: err.Error()}
				report.Status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
			report.Checks[name] = res
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(report)
	}
}
