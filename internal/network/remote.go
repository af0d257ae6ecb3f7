package network

import (
	"github.com/Faultbox/offshore-diorama/internal/engine/scene"
	"github.com/Faultbox/offshore-diorama/pkg/interp"
)

// RemoteMesh is a scene mesh whose successful transform writes are
// published to viewers.
type RemoteMesh struct {
	*scene.Mesh
	hub *Hub
}

// NewRemoteMesh creates a mesh publishing through hub.
func NewRemoteMesh(id string, hub *Hub) *RemoteMesh {
	return &RemoteMesh{Mesh: scene.NewMesh(id), hub: hub}
}

// SetTransform writes the transform and publishes it.
func (m *RemoteMesh) SetTransform(t scene.Transform) error {
	if err := m.Mesh.SetTransform(t); err != nil {
		return err
	}
	m.hub.PublishTransform(m.ID(), t)
	return nil
}

// CameraSink returns a pose callback that publishes the camera.
func (h *Hub) CameraSink() func(interp.CameraPose) {
	return h.PublishCamera
}
