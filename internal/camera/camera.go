package camera

import (
	"errors"
	"sync"

	"attendance-station/internal/apperr"
	"attendance-station/internal/face"
)

// Camera opens capture devices by index.
type Camera interface {
	Open(index int) (Handle, error)
}

// Handle is an open capture device.
type Handle interface {
	// ReadFrame returns the next frame, or an error when the device produced
	// nothing usable.
	ReadFrame() (*face.Frame, error)
	Release()
}

// ErrNoDevice is returned by camera backends when the index has no device.
var ErrNoDevice = errors.New("camera: no such device")

// Capture is a scoped guard over an open handle: acquired once, released at
// most once, safe to release on every exit path.
type Capture struct {
	handle  Handle
	release sync.Once
}

// Acquire opens the device at index. Open failures surface as sensor
// unavailability so callers can tell them apart from a no-match outcome.
func Acquire(cam Camera, index int) (*Capture, error) {
	handle, err := cam.Open(index)
	if err != nil {
		return nil, apperr.SensorUnavailable("failed to open camera")
	}
	return &Capture{handle: handle}, nil
}

func (c *Capture) Read() (*face.Frame, error) {
	return c.handle.ReadFrame()
}

func (c *Capture) Release() {
	c.release.Do(c.handle.Release)
}

// Unconfigured returns a Camera for stations with no capture backend wired:
// every open fails, so face flows surface sensor unavailability.
func Unconfigured() Camera {
	return unconfigured{}
}

type unconfigured struct{}

func (unconfigured) Open(int) (Handle, error) {
	return nil, ErrNoDevice
}
