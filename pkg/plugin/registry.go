package plugin

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// PluginRegistry tracks host-side plugin instances by package name
type PluginRegistry struct {
	plugins map[string]*PluginRecord
	mu      sync.RWMutex
}

// NewPluginRegistry creates a new plugin registry
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		plugins: make(map[string]*PluginRecord),
	}
}

// Register adds p under its package name
func (r *PluginRegistry) Register(p Plugin) error {
	meta := p.Metadata()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[meta.PackageName]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, meta.PackageName)
	}

	r.plugins[meta.PackageName] = &PluginRecord{
		Plugin:   p,
		Metadata: meta,
		State:    StateCreated,
		LoadedAt: time.Now(),
	}

	return nil
}

// Get retrieves a copy of the record for packageName
func (r *PluginRegistry) Get(packageName string) (PluginRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, exists := r.plugins[packageName]
	if !exists {
		return PluginRecord{}, false
	}
	return *record, true
}

// GetAll returns copies of all records ordered by package name
func (r *PluginRegistry) GetAll() []PluginRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]PluginRecord, 0, len(r.plugins))
	for _, record := range r.plugins {
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Metadata.PackageName < records[j].Metadata.PackageName
	})

	return records
}

// Count returns the number of registered plugins
func (r *PluginRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// GetByState returns the records in state, ordered by package name
func (r *PluginRegistry) GetByState(state PluginState) []PluginRecord {
	var out []PluginRecord
	for _, record := range r.GetAll() {
		if record.State == state {
			out = append(out, record)
		}
	}
	return out
}

// Update applies updater to the record under the registry lock
func (r *PluginRegistry) Update(packageName string, updater func(*PluginRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.plugins[packageName]
	if !exists {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, packageName)
	}

	updater(record)
	return nil
}

// UpdateState updates a plugin's state
func (r *PluginRegistry) UpdateState(packageName string, state PluginState) error {
	return r.Update(packageName, func(record *PluginRecord) {
		record.State = state
	})
}

// Remove removes a plugin from the registry
func (r *PluginRegistry) Remove(packageName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[packageName]; !exists {
		return fmt.Errorf("%w: %s", ErrPluginNotFound, packageName)
	}

	delete(r.plugins, packageName)
	return nil
}

// RecordError records an error for a plugin
func (r *PluginRegistry) RecordError(packageName string, err error) error {
	return r.Update(packageName, func(record *PluginRecord) {
		record.ErrorCount++
		record.LastError = err
	})
}

// RecordUpdate stores new metadata after a plugin update
func (r *PluginRegistry) RecordUpdate(packageName string, meta PluginMetadata) error {
	return r.Update(packageName, func(record *PluginRecord) {
		now := time.Now()
		record.Metadata = meta
		record.UpdatedAt = &now
	})
}

// Metadata returns the metadata of every registered plugin
func (r *PluginRegistry) Metadata() []*PluginMetadata {
	records := r.GetAll()
	out := make([]*PluginMetadata, 0, len(records))
	for i := range records {
		m := records[i].Metadata
		out = append(out, &m)
	}
	return out
}
