// Package dispatch owns the codec table and drives the layer-by-layer
// decode and encode walks over it.
package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/stratum/internal/core"
)

// Registry maps link-layer types and protocol/ethertype ids to the codec
// that claimed them at registration time. Registration happens at startup;
// lookups are read-only afterwards.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]core.Codec
	protos map[uint16]core.Codec
	dlts   map[int]core.Codec
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]core.Codec),
		protos: make(map[uint16]core.Codec),
		dlts:   make(map[int]core.Codec),
	}
}

// Register claims c's declared link-layer types and protocol ids. Every
// identifier may be claimed by exactly one codec.
func (r *Registry) Register(c core.Codec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: codec %q already registered", core.ErrCodecConflict, name)
	}

	for _, id := range c.ProtocolIDs() {
		if prev, exists := r.protos[id]; exists {
			return fmt.Errorf("%w: protocol id 0x%04x claimed by both %q and %q",
				core.ErrCodecConflict, id, prev.Name(), name)
		}
	}
	for _, dlt := range c.DataLinkTypes() {
		if prev, exists := r.dlts[dlt]; exists {
			return fmt.Errorf("%w: link-layer type %d claimed by both %q and %q",
				core.ErrCodecConflict, dlt, prev.Name(), name)
		}
	}

	r.byName[name] = c
	for _, id := range c.ProtocolIDs() {
		r.protos[id] = c
	}
	for _, dlt := range c.DataLinkTypes() {
		r.dlts[dlt] = c
	}
	return nil
}

// ByProtocol returns the codec claiming the given protocol/ethertype id.
func (r *Registry) ByProtocol(id uint16) (core.Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.protos[id]
	return c, ok
}

// ByDataLink returns the root codec for a libpcap link-layer type.
func (r *Registry) ByDataLink(dlt int) (core.Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.dlts[dlt]
	return c, ok
}

// Codecs returns the registered codecs sorted by name.
func (r *Registry) Codecs() []core.Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]core.Codec, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}

// ProtocolIDs returns the ids claimed by the named codec, sorted.
func (r *Registry) ProtocolIDs(name string) []uint16 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return nil
	}
	ids := append([]uint16(nil), c.ProtocolIDs()...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
