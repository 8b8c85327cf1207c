// Package vision owns the single camera session exposed to tool callers.
package vision

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cjeanneret/visionmcp/internal/debug"
	"github.com/cjeanneret/visionmcp/internal/hw/camera"
	"github.com/cjeanneret/visionmcp/internal/logic/capture"
)

const (
	msgOpened      = "Camera opened"
	msgAlreadyOpen = "Camera already open"
)

// Properties are the capture properties negotiated with the device.
type Properties struct {
	Width   int
	Height  int
	FPS     float64
	Backend string
}

// OpenParams requests a camera. Zero Width, Height or FPS leave the
// driver's default in place.
type OpenParams struct {
	Index   int
	Width   int
	Height  int
	FPS     int
	Backend string
}

// Status is a snapshot of the session. Props is nil while closed.
type Status struct {
	Open  bool
	Index int
	Props *Properties
}

// Shot describes a single saved frame.
type Shot struct {
	Path   string
	MIME   string
	Width  int
	Height int
}

// BurstParams defines a burst capture request.
type BurstParams struct {
	Count      int
	PeriodMs   int
	SaveDir    string
	Format     string
	Warmup     int
	DurationMs int
}

// BurstResult describes a burst. Paths is never nil and, on failure, holds
// the frames written before the error in capture order. RunID tags the
// burst's log lines and is set once the burst has been accepted.
type BurstResult struct {
	RunID      string
	Paths      []string
	MIME       string
	Width      int
	Height     int
	PeriodMs   int
	DurationMs int
	SaveDir    string
}

// Session holds at most one open camera handle. All methods are safe for
// concurrent use; calls are serialized so frame reads never interleave.
type Session struct {
	opener camera.Opener
	now    func() time.Time

	mu    sync.Mutex
	dev   camera.Device
	index int
	props *Properties
}

// NewSession creates a closed session that opens devices through opener.
func NewSession(opener camera.Opener) *Session {
	return &Session{
		opener: opener,
		now:    time.Now,
	}
}

// Open binds the camera described by p. If a camera is already open it
// reports success and leaves the existing handle and properties untouched.
func (s *Session) Open(p OpenParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev != nil {
		return msgAlreadyOpen, nil
	}

	backend := camera.ParseBackend(p.Backend)
	debug.Info("Opening camera index=%d backend=%s width=%d height=%d fps=%d",
		p.Index, backend, p.Width, p.Height, p.FPS)

	dev, err := s.opener.Open(p.Index, backend)
	if err == nil && !dev.IsOpened() {
		_ = dev.Close()
		err = camera.ErrUnavailable
	}
	if err != nil {
		debug.Error(err)
		return "", &openError{index: p.Index, backend: backend.String(), err: err}
	}

	if p.Width > 0 {
		dev.Set(camera.FrameWidth, float64(p.Width))
	}
	if p.Height > 0 {
		dev.Set(camera.FrameHeight, float64(p.Height))
	}
	if p.FPS > 0 {
		dev.Set(camera.FPS, float64(p.FPS))
	}

	s.dev = dev
	s.index = p.Index
	s.props = &Properties{
		Width:   readInt(dev, camera.FrameWidth),
		Height:  readInt(dev, camera.FrameHeight),
		FPS:     readFloat(dev, camera.FPS),
		Backend: backend.String(),
	}
	debug.Info("Camera open with props: %+v", *s.props)
	return msgOpened, nil
}

// Status reports whether a camera is bound and still ready.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev == nil {
		return Status{}
	}
	props := *s.props
	return Status{
		Open:  s.dev.IsOpened(),
		Index: s.index,
		Props: &props,
	}
}

// Capture saves one frame into dir and returns its absolute path.
// Width and Height are the negotiated session values, not measured from the frame.
func (s *Session) Capture(dir, format string) (Shot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready() {
		return Shot{}, ErrNotOpen
	}
	f := camera.ParseFormat(format)

	data, err := s.grab(f)
	if err != nil {
		return Shot{}, err
	}

	abs, err := resolveDir(dir)
	if err != nil {
		return Shot{}, &FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}
	if err := ensureDir(abs); err != nil {
		return Shot{}, err
	}

	path := filepath.Join(abs, frameName(s.now(), f))
	if err := writeFile(path, data); err != nil {
		return Shot{}, err
	}
	debug.Info("Saved %s", path)

	return Shot{
		Path:   path,
		MIME:   f.MIME(),
		Width:  s.props.Width,
		Height: s.props.Height,
	}, nil
}

// Burst captures a fixed-rate sequence of frames into p.SaveDir.
// The first read, encode or write failure stops the burst; the result
// still lists every frame written before it.
func (s *Session) Burst(ctx context.Context, p BurstParams) (BurstResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := BurstResult{Paths: []string{}}
	if !s.ready() {
		return res, ErrNotOpen
	}

	n, err := capture.EffectiveCount(p.Count, p.PeriodMs, p.DurationMs)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	id := ulid.Make()
	res.RunID = id.String()
	f := camera.ParseFormat(p.Format)

	// Fewer queued frames means less stale data at the start of the burst.
	s.dev.Set(camera.BufferSize, 1)

	for i := 0; i < p.Warmup; i++ {
		if fr, err := s.dev.Read(); err == nil {
			_ = fr.Close()
		}
	}

	dir, err := resolveDir(p.SaveDir)
	if err != nil {
		err = &FilesystemError{Op: "mkdir", Path: p.SaveDir, Err: err}
		debug.Error(fmt.Errorf("burst %s: %w", id, err))
		return res, err
	}
	if err := ensureDir(dir); err != nil {
		debug.Error(fmt.Errorf("burst %s: %w", id, err))
		return res, err
	}
	debug.Live("burst %s: n=%d period=%dms warmup=%d dir=%s", id, n, p.PeriodMs, p.Warmup, dir)

	seq := capture.NewSequence(capture.ShooterFunc(func(i int) (string, error) {
		data, err := s.grab(f)
		if err != nil {
			return "", err
		}
		path := filepath.Join(dir, burstName(s.now(), i, f))
		if err := writeFile(path, data); err != nil {
			return "", err
		}
		return path, nil
	}))

	paths, err := seq.RunBurst(ctx, capture.BurstParams{
		Count:  n,
		Period: time.Duration(p.PeriodMs) * time.Millisecond,
		Label:  "burst " + id.String(),
	})
	res.Paths = paths
	if err != nil {
		debug.Error(fmt.Errorf("burst %s aborted after %d frames: %w", id, len(paths), err))
		return res, err
	}

	res.MIME = f.MIME()
	res.Width = s.props.Width
	res.Height = s.props.Height
	res.PeriodMs = p.PeriodMs
	res.DurationMs = p.DurationMs
	res.SaveDir = dir
	return res, nil
}

// Close releases the camera. Closing a closed session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dev != nil {
		if err := s.dev.Close(); err != nil {
			debug.Verbose("release failed (ignored): %v", err)
		}
		debug.Info("Camera %d released", s.index)
	}
	s.dev = nil
	s.index = 0
	s.props = nil
}

func (s *Session) ready() bool {
	return s.dev != nil && s.dev.IsOpened()
}

// grab reads one frame and encodes it. Callers hold s.mu.
func (s *Session) grab(f camera.Format) ([]byte, error) {
	fr, err := s.dev.Read()
	if err != nil {
		if errors.Is(err, camera.ErrNoFrame) {
			return nil, ErrReadFailure
		}
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer fr.Close()

	data, err := fr.Encode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailure, err)
	}
	if len(data) == 0 {
		return nil, ErrEncodeFailure
	}
	debug.Trace("frame encoded as %s (%d bytes)", f, len(data))
	return data, nil
}

func readFloat(dev camera.Device, prop camera.Property) float64 {
	v := dev.Get(prop)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func readInt(dev camera.Device, prop camera.Property) int {
	return int(readFloat(dev, prop))
}
