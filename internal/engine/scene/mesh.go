package scene

import (
	"sync"
)

// Mesh is an in-process Entity. It is safe for concurrent use: the frame
// loop writes while transport goroutines read.
type Mesh struct {
	id string

	mu        sync.RWMutex
	transform Transform
	detached  bool
	writes    int
	attrs     map[string]float64
}

// NewMesh creates a mesh with an identity transform.
func NewMesh(id string) *Mesh {
	return &Mesh{
		id:        id,
		transform: IdentityTransform(),
		attrs:     make(map[string]float64),
	}
}

// ID returns the mesh identifier.
func (m *Mesh) ID() string { return m.id }

// Transform returns a copy of the current transform.
func (m *Mesh) Transform() Transform {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transform
}

// SetTransform overwrites the transform. Fails with ErrDetached once the
// mesh has been removed from the scene.
func (m *Mesh) SetTransform(t Transform) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detached {
		return ErrDetached
	}
	m.transform = t
	m.writes++
	return nil
}

// Writes returns the number of successful transform writes.
func (m *Mesh) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Detach removes the mesh from the scene. Subsequent writes fail.
func (m *Mesh) Detach() {
	m.mu.Lock()
	m.detached = true
	m.mu.Unlock()
}

// SetAttribute stores a numeric feature attribute, e.g. a turbine's wind speed.
func (m *Mesh) SetAttribute(name string, v float64) {
	m.mu.Lock()
	m.attrs[name] = v
	m.mu.Unlock()
}

// Attribute returns a feature attribute.
func (m *Mesh) Attribute(name string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.attrs[name]
	return v, ok
}
