package mcpserver

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/cjeanneret/visionmcp/internal/config"
)

func object(props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props}
}

func intProp(desc string, def int, minimum *float64) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: desc,
		Default:     rawDefault(def),
		Minimum:     minimum,
	}
}

func stringProp(desc, def string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: desc,
		Default:     rawDefault(def),
	}
}

func rawDefault(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// ints and strings always marshal
		panic(err)
	}
	return b
}

func zero() *float64 {
	z := 0.0
	return &z
}

// Input schemas advertise the configured defaults, so a call that omits an
// argument gets the value from the server's config file.

func listCamerasSchema(cfg *config.Config) *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"max_index": intProp("Probe indices 0..max_index-1", cfg.Probe.MaxIndex, zero()),
	})
}

func visionStartSchema(cfg *config.Config) *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"camera_index": intProp("Device index to open", cfg.Camera.Index, zero()),
		"width":        intProp("Requested frame width in pixels; 0 keeps the driver default", cfg.Camera.Width, zero()),
		"height":       intProp("Requested frame height in pixels; 0 keeps the driver default", cfg.Camera.Height, zero()),
		"fps":          intProp("Requested frame rate; 0 keeps the driver default", cfg.Camera.FPS, zero()),
		"backend":      stringProp("One of auto, avfoundation, msmf, dshow, v4l2", cfg.Camera.Backend),
	})
}

func visionCaptureSchema(cfg *config.Config) *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"save_dir": stringProp("Directory for the frame; ~ expands to the home directory", cfg.Capture.SaveDir),
		"format":   stringProp("jpg, anything else writes png", cfg.Capture.Format),
	})
}

func visionBurstSchema(cfg *config.Config) *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"n":           intProp("Number of frames", cfg.Burst.N, zero()),
		"period_ms":   intProp("Spacing between frame targets in milliseconds", cfg.Burst.PeriodMs, nil),
		"save_dir":    stringProp("Directory for the frames; ~ expands to the home directory", cfg.Burst.SaveDir),
		"format":      stringProp("jpg, anything else writes png", cfg.Burst.Format),
		"warmup":      intProp("Frames read and discarded before the burst", cfg.Burst.Warmup, zero()),
		"duration_ms": intProp("When > 0, n becomes round(duration_ms / period_ms)", cfg.Burst.DurationMs, nil),
	})
}

func emptySchema() *jsonschema.Schema {
	return object(nil)
}
