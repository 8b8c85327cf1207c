package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/cjeanneret/visionmcp/internal/debug"
)

const (
	mockDefaultWidth  = 640
	mockDefaultHeight = 480
	mockDefaultFPS    = 30
	mockMaxSide       = 4096
)

// MockOpener is a driver that needs no hardware.
// Indices below Devices open successfully and deliver synthetic frames.
// Used for development without a camera, or testing.
type MockOpener struct {
	Devices int

	mu     sync.Mutex
	active int
}

// NewMockOpener creates a mock driver exposing n cameras.
func NewMockOpener(n int) *MockOpener {
	debug.Info("Using MOCK camera driver (%d devices)", n)
	return &MockOpener{Devices: n}
}

// Open binds a synthetic camera. backend is accepted but has no effect.
func (m *MockOpener) Open(index int, backend Backend) (Device, error) {
	debug.Trace("mock open index=%d backend=%s", index, backend)
	if index < 0 || index >= m.Devices {
		return nil, fmt.Errorf("mock index %d: %w", index, ErrUnavailable)
	}

	m.mu.Lock()
	m.active++
	m.mu.Unlock()

	return &mockDevice{
		owner:  m,
		index:  index,
		opened: true,
		props: map[Property]float64{
			FrameWidth:  mockDefaultWidth,
			FrameHeight: mockDefaultHeight,
			FPS:         mockDefaultFPS,
			BufferSize:  4,
		},
	}, nil
}

// Active returns how many mock handles are currently open.
func (m *MockOpener) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

type mockDevice struct {
	owner  *MockOpener
	index  int
	opened bool
	seq    int
	props  map[Property]float64
}

func (d *mockDevice) IsOpened() bool { return d.opened }

func (d *mockDevice) Set(prop Property, value float64) {
	switch prop {
	case FrameWidth, FrameHeight:
		if value < 1 || value > mockMaxSide {
			return
		}
	case FPS:
		if value <= 0 || value > 120 {
			return
		}
	}
	d.props[prop] = value
}

func (d *mockDevice) Get(prop Property) float64 {
	return d.props[prop]
}

func (d *mockDevice) Read() (Frame, error) {
	if !d.opened {
		return nil, ErrNoFrame
	}
	d.seq++

	w, h := int(d.props[FrameWidth]), int(d.props[FrameHeight])
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shade := uint8(d.seq * 16)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: shade, A: 255})
		}
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 20),
	}
	drawer.DrawString(fmt.Sprintf("cam %d frame %d %s", d.index, d.seq, time.Now().Format("15:04:05.000")))

	return &mockFrame{img: img}, nil
}

func (d *mockDevice) Close() error {
	if !d.opened {
		return nil
	}
	d.opened = false
	d.owner.mu.Lock()
	d.owner.active--
	d.owner.mu.Unlock()
	return nil
}

type mockFrame struct {
	img image.Image
}

func (f *mockFrame) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == JPEG {
		err = jpeg.Encode(&buf, f.img, &jpeg.Options{Quality: 95})
	} else {
		err = png.Encode(&buf, f.img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *mockFrame) Close() error { return nil }
