// Package memory holds mutex-guarded in-process repositories used when no database is configured
// and as fast fakes in service tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

type profileRecord struct {
	mu      sync.RWMutex
	profile entities.UserProfile
	prefs   map[string]json.RawMessage
}

// ProfileStore implements UserProfileRepository in memory.
// The store lock guards only the map; each record carries its own lock so writes to
// different users never wait on each other. Preferences are kept JSON-encoded so readers
// never share values with writers.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[int64]*profileRecord
	now      func() time.Time
}

var _ repositories.UserProfileRepository = (*ProfileStore)(nil)

// NewProfileStore creates an empty profile store
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[int64]*profileRecord),
		now:      time.Now,
	}
}

// Upsert creates the profile on first sight and returns it unchanged afterwards
func (s *ProfileStore) Upsert(_ context.Context, platformID int64, displayName string) (*entities.UserProfile, error) {
	rec, ok := s.record(platformID)
	if !ok {
		s.mu.Lock()
		rec, ok = s.profiles[platformID]
		if !ok {
			now := s.now().UTC()
			rec = &profileRecord{
				profile: entities.UserProfile{
					PlatformID:  platformID,
					DisplayName: displayName,
					CreatedAt:   now,
					UpdatedAt:   now,
				},
				prefs: make(map[string]json.RawMessage),
			}
			s.profiles[platformID] = rec
		}
		s.mu.Unlock()
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.snapshot(), nil
}

// GetByPlatformID returns a copy of the stored profile
func (s *ProfileStore) GetByPlatformID(_ context.Context, platformID int64) (*entities.UserProfile, error) {
	rec, ok := s.record(platformID)
	if !ok {
		return nil, userNotFound(platformID)
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.snapshot(), nil
}

// SetLocation replaces both coordinates under the record's write lock
func (s *ProfileStore) SetLocation(_ context.Context, platformID int64, location entities.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	rec, ok := s.record(platformID)
	if !ok {
		return userNotFound(platformID)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	loc := location
	rec.profile.Location = &loc
	rec.profile.UpdatedAt = s.now().UTC()
	return nil
}

// GetLocation returns nil when no location was ever set
func (s *ProfileStore) GetLocation(_ context.Context, platformID int64) (*entities.GeoPoint, error) {
	rec, ok := s.record(platformID)
	if !ok {
		return nil, userNotFound(platformID)
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()
	if rec.profile.Location == nil {
		return nil, nil
	}
	loc := *rec.profile.Location
	return &loc, nil
}

// SetPreference stores value under key, leaving other keys untouched
func (s *ProfileStore) SetPreference(_ context.Context, platformID int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("preference %q is not JSON encodable: %v", key, err))
	}

	rec, ok := s.record(platformID)
	if !ok {
		return userNotFound(platformID)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.prefs[key] = raw
	rec.profile.UpdatedAt = s.now().UTC()
	return nil
}

// GetPreferences decodes a fresh preferences map
func (s *ProfileStore) GetPreferences(_ context.Context, platformID int64) (entities.Preferences, error) {
	rec, ok := s.record(platformID)
	if !ok {
		return nil, userNotFound(platformID)
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()
	return rec.decodePrefs(), nil
}

// exists is used by stores holding a reference to a profile
func (s *ProfileStore) exists(platformID int64) bool {
	_, ok := s.record(platformID)
	return ok
}

// record looks up a profile; records are never removed, so the pointer stays valid
func (s *ProfileStore) record(platformID int64) (*profileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.profiles[platformID]
	return rec, ok
}

func (r *profileRecord) snapshot() *entities.UserProfile {
	p := r.profile
	if r.profile.Location != nil {
		loc := *r.profile.Location
		p.Location = &loc
	}
	p.Preferences = r.decodePrefs()
	return &p
}

func (r *profileRecord) decodePrefs() entities.Preferences {
	prefs := make(entities.Preferences, len(r.prefs))
	for k, raw := range r.prefs {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			prefs[k] = v
		}
	}
	return prefs
}

func userNotFound(platformID int64) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("user profile %d not found", platformID))
}
