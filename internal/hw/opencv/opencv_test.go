//go:build !noopencv

package opencv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/cjeanneret/visionmcp/internal/hw/camera"
)

// recordingCapture stands in for *gocv.VideoCapture and records calls.
type recordingCapture struct {
	opened bool
	closes int
	sets   []gocv.VideoCaptureProperties
}

func (c *recordingCapture) IsOpened() bool { return c.opened }

func (c *recordingCapture) Set(prop gocv.VideoCaptureProperties, _ float64) {
	c.sets = append(c.sets, prop)
}

func (c *recordingCapture) Get(gocv.VideoCaptureProperties) float64 { return 0 }

func (c *recordingCapture) Read(*gocv.Mat) bool { return false }

func (c *recordingCapture) Close() error {
	c.closes++
	return nil
}

func newTestOpener(goos string, vc *recordingCapture, err error) (*Opener, *[]gocv.VideoCaptureAPI) {
	var apis []gocv.VideoCaptureAPI
	return &Opener{
		goos: goos,
		open: func(_ int, api gocv.VideoCaptureAPI) (videoCapture, error) {
			apis = append(apis, api)
			if vc == nil {
				return nil, err
			}
			return vc, err
		},
	}, &apis
}

func TestOpen_FailedOpenReleasesCapture(t *testing.T) {
	vc := &recordingCapture{}
	o, _ := newTestOpener("linux", vc, errors.New("Error opening device: 3"))

	dev, err := o.Open(3, camera.BackendAuto)
	require.ErrorIs(t, err, camera.ErrUnavailable)
	assert.Nil(t, dev)
	assert.Equal(t, 1, vc.closes)
}

func TestOpen_FailedOpenWithoutCapture(t *testing.T) {
	o, _ := newTestOpener("linux", nil, errors.New("boom"))

	_, err := o.Open(0, camera.BackendAuto)
	require.ErrorIs(t, err, camera.ErrUnavailable)
}

func TestOpen_UnopenedCaptureIsReleased(t *testing.T) {
	vc := &recordingCapture{}
	o, _ := newTestOpener("linux", vc, nil)

	_, err := o.Open(0, camera.BackendAuto)
	require.ErrorIs(t, err, camera.ErrUnavailable)
	assert.Equal(t, 1, vc.closes)
}

func TestOpen_BackendDegradesOffPlatform(t *testing.T) {
	cases := []struct {
		goos    string
		backend camera.Backend
		want    gocv.VideoCaptureAPI
	}{
		{"linux", camera.BackendV4L2, gocv.VideoCaptureV4L2},
		{"linux", camera.BackendMSMF, gocv.VideoCaptureAny},
		{"windows", camera.BackendDShow, gocv.VideoCaptureDshow},
		{"windows", camera.BackendMSMF, gocv.VideoCaptureMSMF},
		{"darwin", camera.BackendAVFoundation, gocv.VideoCaptureAVFoundation},
		{"darwin", camera.BackendV4L2, gocv.VideoCaptureAny},
	}
	for _, tc := range cases {
		vc := &recordingCapture{opened: true}
		o, apis := newTestOpener(tc.goos, vc, nil)

		dev, err := o.Open(0, tc.backend)
		require.NoError(t, err)
		assert.Equal(t, []gocv.VideoCaptureAPI{tc.want}, *apis, "%s/%s", tc.goos, tc.backend)
		require.NoError(t, dev.Close())
		assert.Equal(t, 1, vc.closes)
	}
}

func TestDevice_PropertyMapping(t *testing.T) {
	vc := &recordingCapture{opened: true}
	d := &device{vc: vc}

	d.Set(camera.FrameWidth, 640)
	d.Set(camera.FrameHeight, 480)
	d.Set(camera.FPS, 15)
	d.Set(camera.BufferSize, 1)
	d.Set(camera.Property(99), 1)

	assert.Equal(t, []gocv.VideoCaptureProperties{
		gocv.VideoCaptureFrameWidth,
		gocv.VideoCaptureFrameHeight,
		gocv.VideoCaptureFPS,
		gocv.VideoCaptureBufferSize,
	}, vc.sets)
	assert.Equal(t, float64(0), d.Get(camera.Property(99)))
}

func TestDevice_ReadWithoutFrame(t *testing.T) {
	d := &device{vc: &recordingCapture{opened: true}}

	_, err := d.Read()
	assert.ErrorIs(t, err, camera.ErrNoFrame)
}
