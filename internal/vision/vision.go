package vision

import (
	"attendance-station/internal/camera"
	"attendance-station/internal/face"
)

// Engine bundles the collaborators a capture backend provides. Encoder is
// nil when the backend has no descriptor model; the matcher then runs its
// keypoint fallback. Camera is the device the backend reads frames from;
// without one the face modes stay unavailable even with a detector present.
type Engine struct {
	Detector  face.Detector
	Encoder   face.Encoder
	Extractor face.KeypointExtractor
	Camera    camera.Camera
}

var active *Engine

// Register installs the engine for this process. Device-specific backends
// call it from their init; without a registered engine, face modes report
// the sensor as unavailable while fingerprint and manual modes keep working.
func Register(e *Engine) {
	active = e
}

// Active returns the registered engine, or nil.
func Active() *Engine {
	return active
}
