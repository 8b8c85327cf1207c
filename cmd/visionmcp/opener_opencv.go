//go:build !noopencv

package main

import (
	"github.com/cjeanneret/visionmcp/internal/hw/camera"
	"github.com/cjeanneret/visionmcp/internal/hw/opencv"
)

func newOpenCVOpener() (camera.Opener, error) {
	return opencv.NewOpener(), nil
}
