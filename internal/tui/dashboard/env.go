package dashboard

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyDashboardEnvOverrides applies environment variable overrides to dashboard configuration
func applyDashboardEnvOverrides(m *Model) {
	if m == nil {
		return
	}

	if v := os.Getenv("SHOKODASH_DASH_TICK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			m.tickInterval = d
		}
	}
	if lines, ok := envPositiveInt("SHOKODASH_DASH_ROW_HEIGHT"); ok {
		m.rowHeight = lines
	}
}

func envPositiveInt(name string) (int, bool) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return 0, false
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}

	return parsed, true
}
