package health

import (
	"encoding/json"
	"net/http"
)

// Status is the liveness document served at /health.
type Status struct {
	OK bool `json:"ok"`
}

// Path is where the health endpoint is mounted.
const Path = "/health"

// Handler reports liveness. It never contacts the upstream provider, so it
// answers 200 even while the provider is unavailable.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_ = json.NewEncoder(w).Encode(Status{OK: true})
	})
}

// Check fetches url and reports whether it answered {"ok": true}.
func Check(client *http.Client, url string) (bool, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	var s Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return false, err
	}
	return s.OK, nil
}
