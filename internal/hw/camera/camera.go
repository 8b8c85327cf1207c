package camera

import "errors"

var (
	// ErrUnavailable is returned by an Opener when the index cannot be bound.
	ErrUnavailable = errors.New("camera unavailable")

	// ErrNoFrame is returned by Device.Read when the device delivered no frame.
	ErrNoFrame = errors.New("no frame available")
)

// Property identifies a capture property that can be requested or read back.
type Property int

const (
	FrameWidth Property = iota
	FrameHeight
	FPS
	BufferSize
)

func (p Property) String() string {
	switch p {
	case FrameWidth:
		return "width"
	case FrameHeight:
		return "height"
	case FPS:
		return "fps"
	case BufferSize:
		return "buffersize"
	default:
		return "unknown"
	}
}

// Opener acquires exclusive handles on physical cameras.
// It is the only entry point a driver exposes; everything else
// goes through the returned Device.
type Opener interface {
	Open(index int, backend Backend) (Device, error)
}

// Device is an open, exclusive binding to a camera.
//
// Set is advisory: a driver may ignore or clamp the request, so callers
// must read the negotiated value back with Get.
type Device interface {
	IsOpened() bool
	Set(prop Property, value float64)
	Get(prop Property) float64
	// Read blocks until the device delivers a frame. It returns ErrNoFrame
	// (possibly wrapped) when nothing could be read.
	Read() (Frame, error)
	Close() error
}

// Frame is a single captured image owned by the caller.
type Frame interface {
	Encode(f Format) ([]byte, error)
	Close() error
}
