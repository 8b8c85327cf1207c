package camera

import "strings"

// Format is an output image encoding.
type Format int

const (
	JPEG Format = iota
	PNG
)

// ParseFormat returns JPEG for "jpg" (any case) and PNG for anything else.
func ParseFormat(s string) Format {
	if strings.ToLower(strings.TrimSpace(s)) == "jpg" {
		return JPEG
	}
	return PNG
}

// Ext returns the file extension including the leading dot.
func (f Format) Ext() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// MIME returns the media type of the encoding.
func (f Format) MIME() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func (f Format) String() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}
