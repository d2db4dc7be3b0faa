// Package history maintains bounded per-service buffers of recent metric
// samples used as anomaly-model training windows.
package history

import (
	"sync"

	"github.com/autohealx/healmon/internal/models"
)

// DefaultCapacity bounds a service's buffer when no explicit cap is given.
const DefaultCapacity = 100

// Store keeps one bounded FIFO buffer of samples per service. Buffers are
// created lazily on first append. Insertion order is temporal order; once a
// buffer reaches capacity the oldest sample is evicted first.
type Store struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[string][]models.MetricsSample
}

// NewStore creates a Store whose per-service buffers hold up to capacity
// samples.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		buffers:  make(map[string][]models.MetricsSample),
	}
}

// Append records a sample for the service, evicting the oldest entry when the
// buffer is full.
func (s *Store) Append(service string, sample models.MetricsSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.buffers[service]
	if len(buf) >= s.capacity {
		// Shift in place rather than reslicing so the backing array does
		// not grow without bound.
		copy(buf[0:], buf[1:])
		buf = buf[:s.capacity-1]
	}
	s.buffers[service] = append(buf, sample)
}

// Snapshot returns a copy of the service's buffer in append order. The copy is
// safe for the caller to read while subsequent appends occur.
func (s *Store) Snapshot(service string) []models.MetricsSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.buffers[service]
	if len(buf) == 0 {
		return nil
	}
	out := make([]models.MetricsSample, len(buf))
	copy(out, buf)
	return out
}

// Len reports the number of samples currently buffered for the service.
func (s *Store) Len(service string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buffers[service])
}
