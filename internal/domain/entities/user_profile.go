package entities

import (
	"encoding/json"
	"time"
)

// UserProfile is the per-user record owned by the profile store.
type UserProfile struct {
	PlatformID  int64       `json:"platform_id" db:"platform_id"`
	DisplayName string      `json:"display_name" db:"display_name"`
	Location    *GeoPoint   `json:"location,omitempty" db:"-"`
	Preferences Preferences `json:"preferences" db:"-"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// HasLocation reports whether the user has ever set a location.
func (u *UserProfile) HasLocation() bool {
	return u != nil && u.Location != nil
}

// Preference keys understood by the guide.
const (
	PreferenceCategory     = "category"
	PreferenceRouteMode    = "route_mode"
	PreferenceSearchRadius = "search_radius"
	PreferenceResultLimit  = "result_limit"
)

// Preferences is a free-form mapping from key to a JSON-compatible value.
type Preferences map[string]any

// String returns the value under key when it is a non-empty string.
func (p Preferences) String(key string) (string, bool) {
	v, ok := p[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Float returns the value under key when it is numeric.
func (p Preferences) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Clone returns a deep copy, going through JSON so nested maps and slices are not shared.
func (p Preferences) Clone() Preferences {
	out := Preferences{}
	if len(p) == 0 {
		return out
	}
	raw, err := json.Marshal(p)
	if err != nil {
		for k, v := range p {
			out[k] = v
		}
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}
