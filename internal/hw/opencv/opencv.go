// Package opencv is the real camera driver, backed by gocv.
package opencv

import (
	"fmt"
	"runtime"

	"gocv.io/x/gocv"

	"github.com/cjeanneret/visionmcp/internal/debug"
	"github.com/cjeanneret/visionmcp/internal/hw/camera"
)

// videoCapture is the part of *gocv.VideoCapture a device uses.
type videoCapture interface {
	IsOpened() bool
	Set(prop gocv.VideoCaptureProperties, param float64)
	Get(prop gocv.VideoCaptureProperties) float64
	Read(m *gocv.Mat) bool
	Close() error
}

// Opener opens cameras through OpenCV's VideoCapture.
type Opener struct {
	goos string
	open func(index int, api gocv.VideoCaptureAPI) (videoCapture, error)
}

// NewOpener creates an OpenCV driver for the running platform.
func NewOpener() *Opener {
	debug.Info("Using OpenCV camera driver (gocv %s, opencv %s)", gocv.Version(), gocv.OpenCVVersion())
	return &Opener{goos: runtime.GOOS, open: openVideoCapture}
}

// Open binds the camera at index. Backends that do not exist on the
// running platform degrade to auto-detection.
func (o *Opener) Open(index int, backend camera.Backend) (camera.Device, error) {
	api := apiPreference(backend.ForPlatform(o.goos))
	debug.Trace("opencv open index=%d backend=%s api=%d", index, backend, api)

	vc, err := o.open(index, api)
	if err != nil {
		// gocv hands back an allocated capture even when the open fails.
		if vc != nil {
			_ = vc.Close()
		}
		return nil, fmt.Errorf("%w: %v", camera.ErrUnavailable, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, camera.ErrUnavailable
	}
	return &device{vc: vc}, nil
}

func openVideoCapture(index int, api gocv.VideoCaptureAPI) (videoCapture, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	if api == gocv.VideoCaptureAny {
		vc, err = gocv.OpenVideoCapture(index)
	} else {
		vc, err = gocv.OpenVideoCaptureWithAPI(index, api)
	}
	if vc == nil {
		return nil, err
	}
	return vc, err
}

func apiPreference(b camera.Backend) gocv.VideoCaptureAPI {
	switch b {
	case camera.BackendAVFoundation:
		return gocv.VideoCaptureAVFoundation
	case camera.BackendMSMF:
		return gocv.VideoCaptureMSMF
	case camera.BackendDShow:
		return gocv.VideoCaptureDshow
	case camera.BackendV4L2:
		return gocv.VideoCaptureV4L2
	default:
		return gocv.VideoCaptureAny
	}
}

// property maps p onto its OpenCV id. ok is false for properties OpenCV lacks.
func property(p camera.Property) (id gocv.VideoCaptureProperties, ok bool) {
	switch p {
	case camera.FrameWidth:
		return gocv.VideoCaptureFrameWidth, true
	case camera.FrameHeight:
		return gocv.VideoCaptureFrameHeight, true
	case camera.FPS:
		return gocv.VideoCaptureFPS, true
	case camera.BufferSize:
		return gocv.VideoCaptureBufferSize, true
	default:
		return 0, false
	}
}

type device struct {
	vc videoCapture
}

func (d *device) IsOpened() bool {
	return d.vc != nil && d.vc.IsOpened()
}

func (d *device) Set(prop camera.Property, value float64) {
	id, ok := property(prop)
	if d.vc == nil || !ok {
		return
	}
	d.vc.Set(id, value)
}

func (d *device) Get(prop camera.Property) float64 {
	id, ok := property(prop)
	if d.vc == nil || !ok {
		return 0
	}
	return d.vc.Get(id)
}

func (d *device) Read() (camera.Frame, error) {
	if d.vc == nil {
		return nil, camera.ErrNoFrame
	}
	mat := gocv.NewMat()
	if ok := d.vc.Read(&mat); !ok || mat.Empty() {
		_ = mat.Close()
		return nil, camera.ErrNoFrame
	}
	return &frame{mat: mat}, nil
}

func (d *device) Close() error {
	if d.vc == nil {
		return nil
	}
	err := d.vc.Close()
	d.vc = nil
	return err
}

type frame struct {
	mat gocv.Mat
}

func (f *frame) Encode(format camera.Format) ([]byte, error) {
	ext := gocv.PNGFileExt
	if format == camera.JPEG {
		ext = gocv.JPEGFileExt
	}

	buf, err := gocv.IMEncode(ext, f.mat)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	// GetBytes aliases native memory released by Close.
	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (f *frame) Close() error {
	return f.mat.Close()
}
