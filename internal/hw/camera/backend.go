package camera

import "strings"

// Backend selects the platform capture API used to open a device.
type Backend int

const (
	BackendAuto Backend = iota
	BackendAVFoundation
	BackendMSMF
	BackendDShow
	BackendV4L2
)

var backendNames = map[Backend]string{
	BackendAuto:         "auto",
	BackendAVFoundation: "avfoundation",
	BackendMSMF:         "msmf",
	BackendDShow:        "dshow",
	BackendV4L2:         "v4l2",
}

// ParseBackend maps a case-insensitive name onto a Backend.
// Unrecognized names resolve to BackendAuto.
func ParseBackend(name string) Backend {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, n := range backendNames {
		if n == name {
			return b
		}
	}
	return BackendAuto
}

func (b Backend) String() string {
	if n, ok := backendNames[b]; ok {
		return n
	}
	return "auto"
}

// ForPlatform returns b if its API exists on goos, BackendAuto otherwise.
func (b Backend) ForPlatform(goos string) Backend {
	switch b {
	case BackendAVFoundation:
		if goos == "darwin" || goos == "ios" {
			return b
		}
	case BackendMSMF, BackendDShow:
		if goos == "windows" {
			return b
		}
	case BackendV4L2:
		if goos == "linux" || goos == "android" {
			return b
		}
	}
	return BackendAuto
}
