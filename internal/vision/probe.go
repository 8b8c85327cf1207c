package vision

import (
	"fmt"

	"github.com/cjeanneret/visionmcp/internal/debug"
	"github.com/cjeanneret/visionmcp/internal/hw/camera"
)

// Probe is the outcome of trying to open one camera index.
type Probe struct {
	Index  int
	Open   bool
	Width  int
	Height int
	FPS    float64
	Err    string // driver error text, empty when the open simply failed or succeeded
}

// ListCameras probes indices [0, maxIndex) with the default backend and size.
// Each probe uses its own short-lived handle, released before the next index
// is tried; the session's own handle is never touched. Failures are folded
// into the per-index result, so the slice always has maxIndex entries.
func (s *Session) ListCameras(maxIndex int) []Probe {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]Probe, 0, max(0, maxIndex))
	for i := 0; i < maxIndex; i++ {
		p := probeIndex(s.opener, i)
		debug.Live("probe index=%d open=%v %dx%d@%.1f %s", p.Index, p.Open, p.Width, p.Height, p.FPS, p.Err)
		results = append(results, p)
	}
	return results
}

func probeIndex(opener camera.Opener, index int) (p Probe) {
	p.Index = index

	var dev camera.Device
	defer func() {
		if r := recover(); r != nil {
			p = Probe{Index: index, Err: fmt.Sprint(r)}
		}
		if dev != nil {
			release(dev)
		}
	}()

	var err error
	dev, err = opener.Open(index, camera.BackendAuto)
	if err != nil {
		p.Err = err.Error()
		return p
	}
	if !dev.IsOpened() {
		return p
	}

	p.Open = true
	p.Width = readInt(dev, camera.FrameWidth)
	p.Height = readInt(dev, camera.FrameHeight)
	p.FPS = readFloat(dev, camera.FPS)
	return p
}

// release closes a probe handle, containing any driver panic.
func release(dev camera.Device) {
	defer func() {
		if r := recover(); r != nil {
			debug.Error(fmt.Errorf("probe release: %v", r))
		}
	}()
	if err := dev.Close(); err != nil {
		debug.Verbose("probe release failed (ignored): %v", err)
	}
}
