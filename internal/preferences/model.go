package preferences

import "time"

// Preferences holds the two settings the dashboard keeps per user: favorites and the last selected date.
type Preferences struct {
	UserKey            string
	FavoriteDashboards []string
	LastDate           string // YYYY-MM-DD, empty when unset
	UpdatedAt          time.Time
}
