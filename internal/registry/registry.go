package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/futig/knowledge-backend/internal/entity"
)

// Registry holds process-wide counters and admin settings.
// State lives in memory only and is not shared between replicas.
type Registry struct {
	totalDocumentsIndexed atomic.Int64
	totalUploads          atomic.Int64
	totalSearchRequests   atomic.Int64
	totalRagRequests      atomic.Int64
	errorCount            atomic.Int64

	lastSearchAt atomic.Pointer[time.Time]
	lastRagAt    atomic.Pointer[time.Time]
	lastUploadAt atomic.Pointer[time.Time]

	mu       sync.RWMutex
	settings entity.AdminSettings

	now func() time.Time
}

func New(defaults entity.AdminSettings) (*Registry, error) {
	if err := validateSettings(defaults); err != nil {
		return nil, err
	}
	return &Registry{
		settings: defaults,
		now:      time.Now,
	}, nil
}

// RecordIngested counts one fully ingested file
func (r *Registry) RecordIngested() {
	r.totalDocumentsIndexed.Add(1)
	r.totalUploads.Add(1)
	r.stamp(&r.lastUploadAt)
}

func (r *Registry) RecordSearch() {
	r.totalSearchRequests.Add(1)
	r.stamp(&r.lastSearchAt)
}

func (r *Registry) RecordRag() {
	r.totalRagRequests.Add(1)
	r.stamp(&r.lastRagAt)
}

func (r *Registry) RecordError() {
	r.errorCount.Add(1)
}

func (r *Registry) Metrics() entity.Metrics {
	return entity.Metrics{
		TotalDocumentsIndexed: r.totalDocumentsIndexed.Load(),
		TotalUploads:          r.totalUploads.Load(),
		TotalSearchRequests:   r.totalSearchRequests.Load(),
		TotalRagRequests:      r.totalRagRequests.Load(),
		ErrorCount:            r.errorCount.Load(),
		LastSearchAt:          r.lastSearchAt.Load(),
		LastRagAt:             r.lastRagAt.Load(),
		LastUploadAt:          r.lastUploadAt.Load(),
	}
}

// Settings returns a snapshot of the current settings
func (r *Registry) Settings() entity.AdminSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// UpdateSettings merges the non-nil fields of upd into the current settings.
// The merge is applied only if the result is valid; otherwise nothing changes.
func (r *Registry) UpdateSettings(upd entity.SettingsUpdate) (entity.AdminSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.settings
	if upd.DefaultTopK != nil {
		next.DefaultTopK = *upd.DefaultTopK
	}
	if upd.MaxTopK != nil {
		next.MaxTopK = *upd.MaxTopK
	}
	if upd.EnableLogging != nil {
		next.EnableLogging = *upd.EnableLogging
	}
	if upd.RagSystemPrompt != nil {
		next.RagSystemPrompt = *upd.RagSystemPrompt
	}

	if err := validateSettings(next); err != nil {
		return r.settings, err
	}

	r.settings = next
	return next, nil
}

func (r *Registry) stamp(p *atomic.Pointer[time.Time]) {
	t := r.now().UTC()
	p.Store(&t)
}

func validateSettings(s entity.AdminSettings) error {
	if s.DefaultTopK < 1 {
		return fmt.Errorf("%w: defaultTopK must be at least 1, got %d", entity.ErrInvalidSettings, s.DefaultTopK)
	}
	if s.MaxTopK < s.DefaultTopK {
		return fmt.Errorf("%w: maxTopK(%d) must not be below defaultTopK(%d)", entity.ErrInvalidSettings, s.MaxTopK, s.DefaultTopK)
	}
	return nil
}
