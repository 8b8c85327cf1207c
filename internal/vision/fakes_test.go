package vision

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cjeanneret/visionmcp/internal/hw/camera"
)

// fakeOpener hands out fakeDevices for the indices listed in available.
type fakeOpener struct {
	mu        sync.Mutex
	available map[int]bool
	panicAt   map[int]bool
	opens     []openCall
	devices   []*fakeDevice

	// configure is applied to each new device before it is returned.
	configure func(d *fakeDevice)
}

type openCall struct {
	index   int
	backend camera.Backend
}

func newFakeOpener(indices ...int) *fakeOpener {
	o := &fakeOpener{available: map[int]bool{}}
	for _, i := range indices {
		o.available[i] = true
	}
	return o
}

func (o *fakeOpener) Open(index int, backend camera.Backend) (camera.Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opens = append(o.opens, openCall{index: index, backend: backend})
	if o.panicAt[index] {
		panic("driver crashed")
	}
	if !o.available[index] {
		return nil, fmt.Errorf("index %d: %w", index, camera.ErrUnavailable)
	}

	d := &fakeDevice{
		opened: true,
		props: map[camera.Property]float64{
			camera.FrameWidth:  1280,
			camera.FrameHeight: 720,
			camera.FPS:         30,
		},
	}
	if o.configure != nil {
		o.configure(d)
	}
	o.devices = append(o.devices, d)
	return d, nil
}

func (o *fakeOpener) openDevices() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, d := range o.devices {
		if d.opened {
			n++
		}
	}
	return n
}

// fakeDevice records property writes and reads, and can fail scripted reads.
type fakeDevice struct {
	opened   bool
	props    map[camera.Property]float64
	sets     []camera.Property
	reads    int
	failRead map[int]bool // 1-based read numbers that fail
	encode   func(f camera.Format) ([]byte, error)
	closeErr error
	closeHit func()
	ignore   map[camera.Property]bool
}

func (d *fakeDevice) IsOpened() bool { return d.opened }

func (d *fakeDevice) Set(prop camera.Property, value float64) {
	d.sets = append(d.sets, prop)
	if d.ignore[prop] {
		return
	}
	d.props[prop] = value
}

func (d *fakeDevice) Get(prop camera.Property) float64 { return d.props[prop] }

func (d *fakeDevice) Read() (camera.Frame, error) {
	d.reads++
	if d.failRead[d.reads] {
		return nil, camera.ErrNoFrame
	}
	return &fakeFrame{n: d.reads, encode: d.encode}, nil
}

func (d *fakeDevice) Close() error {
	d.opened = false
	if d.closeHit != nil {
		d.closeHit()
	}
	return d.closeErr
}

type fakeFrame struct {
	n      int
	encode func(f camera.Format) ([]byte, error)
}

func (f *fakeFrame) Encode(format camera.Format) ([]byte, error) {
	if f.encode != nil {
		return f.encode(format)
	}
	return []byte(fmt.Sprintf("%s-frame-%d", format, f.n)), nil
}

func (f *fakeFrame) Close() error { return nil }

var errEncoder = errors.New("encoder rejected frame")
