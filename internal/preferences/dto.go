package preferences

import "time"

type PreferencesResponse struct {
	UserKey            string     `json:"user_key"`
	FavoriteDashboards []string   `json:"favorite_dashboards"`
	LastDate           *string    `json:"last_date"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

type PutPreferencesRequest struct {
	FavoriteDashboards []string `json:"favorite_dashboards" binding:"omitempty,max=200,dive,max=64"`
	LastDate           *string  `json:"last_date"`
}

func toResponse(p *Preferences) *PreferencesResponse {
	res := &PreferencesResponse{
		UserKey:            p.UserKey,
		FavoriteDashboards: p.FavoriteDashboards,
	}
	if res.FavoriteDashboards == nil {
		res.FavoriteDashboards = []string{}
	}
	if p.LastDate != "" {
		d := p.LastDate
		res.LastDate = &d
	}
	if !p.UpdatedAt.IsZero() {
		u := p.UpdatedAt
		res.UpdatedAt = &u
	}
	return res
}
