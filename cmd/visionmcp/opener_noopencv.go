//go:build noopencv

package main

import (
	"errors"

	"github.com/cjeanneret/visionmcp/internal/hw/camera"
)

func newOpenCVOpener() (camera.Opener, error) {
	return nil, errors.New("built without OpenCV (noopencv tag); use -driver mock")
}
