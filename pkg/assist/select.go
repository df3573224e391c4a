package assist

import "sync"

// Selector maps device IDs to staged pipeline IDs. Devices without an
// explicit assignment fall back to the default pipeline.
type Selector struct {
	mu       sync.RWMutex
	byDevice map[string]string
	fallback string
}

// NewSelector creates a selector with the given default pipeline ID.
func NewSelector(defaultPipeline string) *Selector {
	return &Selector{
		byDevice: make(map[string]string),
		fallback: defaultPipeline,
	}
}

// Assign binds a device to a pipeline.
func (s *Selector) Assign(deviceID, pipelineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byDevice[deviceID] = pipelineID
}

// Clear removes a device's assignment so it falls back to the default.
func (s *Selector) Clear(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byDevice, deviceID)
}

// Choose returns the pipeline ID for a device.
func (s *Selector) Choose(deviceID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byDevice[deviceID]; ok {
		return id
	}
	return s.fallback
}
