package calibration

import (
	"sync"
)

// Key identifies one hardware axis.
type Key struct {
	DeviceGUID string
	InputID    int
}

// Manager is the registry of calibration data, keyed by (device, input).
// It is constructor-injected into whatever owns the profile session; there
// is no process-wide instance.
type Manager struct {
	mu      sync.Mutex
	path    string
	entries map[Key]*Data
}

// NewManager returns a registry persisting to the given calibration file.
func NewManager(path string) *Manager {
	return &Manager{
		path:    path,
		entries: make(map[Key]*Data),
	}
}

// Get returns the calibration for the given axis, creating identity
// calibration on first access.
func (m *Manager) Get(deviceGUID string, inputID int) *Data {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := Key{DeviceGUID: deviceGUID, InputID: inputID}
	d, ok := m.entries[key]
	if !ok {
		d = New()
		m.entries[key] = d
	}
	return d
}

// Keys returns the keys of all registered calibrations.
func (m *Manager) Keys() []Key {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]Key, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}
