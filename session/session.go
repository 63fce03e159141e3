// Package session owns the in-memory editing state between upload and render.
package session

import (
	"sync"

	"github.com/google/uuid"

	"clipstudio/types"
)

// Session is one user's editing state: an ordered asset list plus the
// in-flight render flag. All mutations happen under the session mutex, so a
// late-arriving metadata or upload callback for an asset the user already
// removed is ignored rather than resurrecting it.
type Session struct {
	ID string

	mu       sync.Mutex
	order    []string
	assets   map[string]*types.MediaAsset
	inFlight bool
}

func newSession(id string) *Session {
	return &Session{
		ID:     id,
		assets: make(map[string]*types.MediaAsset),
	}
}

// Add inserts an asset at the end of the ordering.
func (s *Session) Add(asset types.MediaAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[asset.ID]; ok {
		return
	}
	copied := asset
	s.assets[asset.ID] = &copied
	s.order = append(s.order, asset.ID)
}

// Remove drops the asset and returns it so the caller can release its stored
// object. Any pending callback for the asset becomes a no-op.
func (s *Session) Remove(id string) (*types.MediaAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return nil, false
	}
	delete(s.assets, id)
	for i, aid := range s.order {
		if aid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return asset, true
}

// SetMetadata attaches measured duration and thumbnail. Returns false when
// the asset was removed while measurement was in flight.
func (s *Session) SetMetadata(id string, duration float64, thumbnail []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return false
	}
	asset.Duration = duration
	asset.Thumbnail = thumbnail
	return true
}

// AttachUpload records the storage key and URL after a successful upload.
// Returns false when the asset was removed while the upload was in flight.
func (s *Session) AttachUpload(id, key, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	if !ok {
		return false
	}
	asset.Key = key
	asset.URL = url
	return true
}

// Assets returns a copy of the asset list in insertion order.
func (s *Session) Assets() []types.MediaAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.MediaAsset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.assets[id])
	}
	return out
}

// VideoClips returns the uploaded video assets in order, URL attached.
func (s *Session) VideoClips() []types.MediaAsset {
	var out []types.MediaAsset
	for _, a := range s.Assets() {
		if a.IsVideo() && a.URL != "" {
			out = append(out, a)
		}
	}
	return out
}

// AudioTrack returns the first uploaded audio asset, or nil.
func (s *Session) AudioTrack() *types.MediaAsset {
	for _, a := range s.Assets() {
		if a.IsAudio() && a.URL != "" {
			copied := a
			return &copied
		}
	}
	return nil
}

// TryBeginRender claims the single render slot. It returns false while a
// render for this session is already in flight.
func (s *Session) TryBeginRender() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// EndRender releases the render slot regardless of outcome, so the user can
// retry a failed render without re-uploading.
func (s *Session) EndRender() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// RenderInFlight reports whether a render is currently running.
func (s *Session) RenderInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Manager hands out sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for id, creating it on first use. An empty
// id allocates a fresh session.
func (m *Manager) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s = newSession(id)
	m.sessions[id] = s
	return s
}

// Get returns the session for id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}
