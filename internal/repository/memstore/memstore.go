// Package memstore is an in-memory implementation of the user, plant and
// log repositories. It backs the server when no database is configured and
// is used by end-to-end tests.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/models"
)

var (
	errUserNotFound  = apperr.NotFound("User not found.")
	errPlantNotFound = apperr.NotFound("Plant not found.")
	errLogNotFound   = apperr.NotFound("Log not found.")
	errUsernameTaken = apperr.Invalid("username", "A user with that username already exists.")
)

// Store keeps every record in maps guarded by one mutex.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	nextUser  int64
	nextPlant int64
	nextLog   int64

	users  map[int64]models.User
	plants map[int64]models.Plant
	logs   map[int64]models.Log
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:    time.Now,
		users:  make(map[int64]models.User),
		plants: make(map[int64]models.Plant),
		logs:   make(map[int64]models.Log),
	}
}

// CreateUser stores u with a fresh id.
func (s *Store) CreateUser(_ context.Context, u models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, errUsernameTaken
		}
	}
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = s.now()
	u.PasswordHash = slices.Clone(u.PasswordHash)
	s.users[u.ID] = u
	return &u, nil
}

// GetUserByUsername looks a user up by login name.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, errUserNotFound
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errUserNotFound
	}
	return &u, nil
}

// UpdateUser applies the non-nil members of upd.
func (s *Store) UpdateUser(_ context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errUserNotFound
	}
	if upd.Username != nil && *upd.Username != u.Username {
		for _, other := range s.users {
			if other.Username == *upd.Username {
				return nil, errUsernameTaken
			}
		}
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = slices.Clone(upd.PasswordHash)
	}
	s.users[id] = u
	return &u, nil
}

// DeleteUser removes the user with their plants and logs.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return errUserNotFound
	}
	delete(s.users, id)
	for pid, p := range s.plants {
		if p.OwnerID == id {
			s.deletePlantLocked(pid)
		}
	}
	for lid, l := range s.logs {
		if l.OwnerID == id {
			delete(s.logs, lid)
		}
	}
	return nil
}

// ListUsers returns every account ordered by id.
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// ListPlants returns the owner's plants, newest first.
func (s *Store) ListPlants(_ context.Context, ownerID int64) ([]models.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Plant, 0)
	for _, p := range s.plants {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Plant) int {
		if c := b.AddedAt.Compare(a.AddedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// CreatePlant stores p with a fresh id and creation time.
func (s *Store) CreatePlant(_ context.Context, p models.Plant) (*models.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPlant++
	p.ID = s.nextPlant
	p.AddedAt = s.now()
	p.Logs = nil
	s.plants[p.ID] = p
	return &p, nil
}

// GetPlant returns the plant if ownerID owns it.
func (s *Store) GetPlant(_ context.Context, ownerID, id int64) (*models.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plants[id]
	if !ok || p.OwnerID != ownerID {
		return nil, errPlantNotFound
	}
	return &p, nil
}

// UpdatePlant applies the supplied members of patch.
func (s *Store) UpdatePlant(_ context.Context, ownerID, id int64, patch models.PlantPatch) (*models.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plants[id]
	if !ok || p.OwnerID != ownerID {
		return nil, errPlantNotFound
	}
	patch.Apply(&p)
	s.plants[id] = p
	return &p, nil
}

// DeletePlant removes the plant and its logs.
func (s *Store) DeletePlant(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plants[id]
	if !ok || p.OwnerID != ownerID {
		return errPlantNotFound
	}
	s.deletePlantLocked(id)
	return nil
}

// PlantOwner returns the owner of any plant.
func (s *Store) PlantOwner(_ context.Context, id int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plants[id]
	if !ok {
		return 0, errPlantNotFound
	}
	return p.OwnerID, nil
}

// ListLogs returns every log on plants ownerID owns, newest first.
func (s *Store) ListLogs(_ context.Context, ownerID int64) ([]models.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLogsLocked(func(l models.Log) bool { return s.ownsLogLocked(ownerID, l) }), nil
}

// ListLogsForPlant returns the logs of one plant ownerID owns.
func (s *Store) ListLogsForPlant(_ context.Context, ownerID, plantID int64) ([]models.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLogsLocked(func(l models.Log) bool {
		return l.PlantID == plantID && s.ownsLogLocked(ownerID, l)
	}), nil
}

// CreateLog stores l with a fresh id and timestamp. The plant must exist.
func (s *Store) CreateLog(_ context.Context, l models.Log) (*models.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plants[l.PlantID]; !ok {
		return nil, errPlantNotFound
	}
	if l.SunlightHours != nil {
		if err := models.ValidateSunlightHours(*l.SunlightHours); err != nil {
			return nil, err
		}
		h := *l.SunlightHours
		l.SunlightHours = &h
	}
	s.nextLog++
	l.ID = s.nextLog
	l.Timestamp = s.now()
	s.logs[l.ID] = l
	return &l, nil
}

// GetLog returns the log if ownerID owns its plant.
func (s *Store) GetLog(_ context.Context, ownerID, id int64) (*models.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.logs[id]
	if !ok || !s.ownsLogLocked(ownerID, l) {
		return nil, errLogNotFound
	}
	return &l, nil
}

// UpdateLog applies the supplied members of patch.
func (s *Store) UpdateLog(_ context.Context, ownerID, id int64, patch models.LogPatch) (*models.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[id]
	if !ok || !s.ownsLogLocked(ownerID, l) {
		return nil, errLogNotFound
	}
	if patch.SunlightHours != nil {
		if err := models.ValidateSunlightHours(*patch.SunlightHours); err != nil {
			return nil, err
		}
	}
	patch.Apply(&l)
	s.logs[id] = l
	return &l, nil
}

// DeleteLog removes a log ownerID owns.
func (s *Store) DeleteLog(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[id]
	if !ok || !s.ownsLogLocked(ownerID, l) {
		return errLogNotFound
	}
	delete(s.logs, id)
	return nil
}

// LogStats aggregates a plant's logs since the given time.
func (s *Store) LogStats(_ context.Context, ownerID, plantID int64, since time.Time) (models.LogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		st         models.LogStats
		sunSum     float64
		sunSamples int
	)
	for _, l := range s.logs {
		if l.PlantID != plantID || !s.ownsLogLocked(ownerID, l) {
			continue
		}
		if l.LogType == models.LogWater && (st.LastWatered == nil || l.Timestamp.After(*st.LastWatered)) {
			ts := l.Timestamp
			st.LastWatered = &ts
		}
		if l.Timestamp.Before(since) {
			continue
		}
		switch l.LogType {
		case models.LogWater:
			st.WaterCount++
		case models.LogFertilize:
			st.FertilizeCount++
		case models.LogPrune:
			st.PruneCount++
		}
		if l.SunlightHours != nil {
			sunSum += *l.SunlightHours
			sunSamples++
		}
	}
	if sunSamples > 0 {
		avg := sunSum / float64(sunSamples)
		st.AvgSunlightHours = &avg
	}
	return st, nil
}

func (s *Store) deletePlantLocked(id int64) {
	delete(s.plants, id)
	for lid, l := range s.logs {
		if l.PlantID == id {
			delete(s.logs, lid)
		}
	}
}

func (s *Store) ownsLogLocked(ownerID int64, l models.Log) bool {
	p, ok := s.plants[l.PlantID]
	return ok && p.OwnerID == ownerID
}

func (s *Store) filterLogsLocked(keep func(models.Log) bool) []models.Log {
	out := make([]models.Log, 0)
	for _, l := range s.logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b models.Log) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}
