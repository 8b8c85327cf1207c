package mcpserver

import (
	"context"
	"unicode"
	"unicode/utf8"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cjeanneret/visionmcp/internal/debug"
	"github.com/cjeanneret/visionmcp/internal/vision"
)

type listCamerasInput struct {
	MaxIndex int `json:"max_index"`
}

type cameraInfo struct {
	Index  int      `json:"index"`
	Open   bool     `json:"open"`
	Width  *int     `json:"width,omitempty"`
	Height *int     `json:"height,omitempty"`
	FPS    *float64 `json:"fps,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type listCamerasOutput struct {
	Cameras []cameraInfo `json:"cameras"`
}

type startInput struct {
	CameraIndex int    `json:"camera_index"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	FPS         int    `json:"fps"`
	Backend     string `json:"backend"`
}

type startOutput struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Props   map[string]any `json:"props"`
	Index   *int           `json:"index"`
}

type statusOutput struct {
	Open  bool           `json:"open"`
	Index *int           `json:"index"`
	Props map[string]any `json:"props"`
}

type captureInput struct {
	SaveDir string `json:"save_dir"`
	Format  string `json:"format"`
}

type captureOutput struct {
	OK     bool   `json:"ok"`
	Path   string `json:"path,omitempty"`
	MIME   string `json:"mime,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

type burstInput struct {
	N          int    `json:"n"`
	PeriodMs   int    `json:"period_ms"`
	SaveDir    string `json:"save_dir"`
	Format     string `json:"format"`
	Warmup     int    `json:"warmup"`
	DurationMs int    `json:"duration_ms"`
}

type burstOutput struct {
	OK         bool     `json:"ok"`
	RunID      string   `json:"run_id,omitempty"`
	Paths      []string `json:"paths"`
	MIME       string   `json:"mime,omitempty"`
	Width      *int     `json:"width,omitempty"`
	Height     *int     `json:"height,omitempty"`
	N          *int     `json:"n,omitempty"`
	PeriodMs   *int     `json:"period_ms,omitempty"`
	DurationMs *int     `json:"duration_ms,omitempty"`
	SaveDir    string   `json:"save_dir,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type stopOutput struct {
	OK bool `json:"ok"`
}

func ptr[T any](v T) *T { return &v }

// sentence capitalizes an error string for display to the client.
func sentence(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// propsMap renders negotiated properties, or {} while closed.
func propsMap(p *vision.Properties) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	return map[string]any{
		"width":   p.Width,
		"height":  p.Height,
		"fps":     p.FPS,
		"backend": p.Backend,
	}
}

func (s *Server) statusSnapshot() (bool, *int, map[string]any) {
	st := s.session.Status()
	if st.Props == nil {
		return st.Open, nil, propsMap(nil)
	}
	return st.Open, ptr(st.Index), propsMap(st.Props)
}

func (s *Server) listCameras(_ context.Context, _ *mcp.CallToolRequest, in listCamerasInput) (*mcp.CallToolResult, listCamerasOutput, error) {
	debug.Verbose("list_cameras max_index=%d", in.MaxIndex)

	probes := s.session.ListCameras(in.MaxIndex)
	out := listCamerasOutput{Cameras: make([]cameraInfo, 0, len(probes))}
	for _, p := range probes {
		info := cameraInfo{Index: p.Index, Open: p.Open, Error: p.Err}
		if p.Open {
			info.Width = ptr(p.Width)
			info.Height = ptr(p.Height)
			info.FPS = ptr(p.FPS)
		}
		out.Cameras = append(out.Cameras, info)
	}
	return nil, out, nil
}

func (s *Server) visionStart(_ context.Context, _ *mcp.CallToolRequest, in startInput) (*mcp.CallToolResult, startOutput, error) {
	debug.Verbose("vision_start %+v", in)

	msg, err := s.session.Open(vision.OpenParams{
		Index:   in.CameraIndex,
		Width:   in.Width,
		Height:  in.Height,
		FPS:     in.FPS,
		Backend: in.Backend,
	})
	if err != nil {
		msg = sentence(err.Error())
	}
	_, index, props := s.statusSnapshot()
	return nil, startOutput{OK: err == nil, Message: msg, Props: props, Index: index}, nil
}

func (s *Server) visionStatus(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, statusOutput, error) {
	open, index, props := s.statusSnapshot()
	return nil, statusOutput{Open: open, Index: index, Props: props}, nil
}

func (s *Server) visionCapture(_ context.Context, _ *mcp.CallToolRequest, in captureInput) (*mcp.CallToolResult, captureOutput, error) {
	debug.Verbose("vision_capture save_dir=%s format=%s", in.SaveDir, in.Format)

	shot, err := s.session.Capture(in.SaveDir, in.Format)
	if err != nil {
		debug.Error(err)
		return nil, captureOutput{Error: err.Error()}, nil
	}
	return nil, captureOutput{
		OK:     true,
		Path:   shot.Path,
		MIME:   shot.MIME,
		Width:  ptr(shot.Width),
		Height: ptr(shot.Height),
	}, nil
}

func (s *Server) visionBurst(ctx context.Context, _ *mcp.CallToolRequest, in burstInput) (*mcp.CallToolResult, burstOutput, error) {
	debug.Verbose("vision_burst %+v", in)

	res, err := s.session.Burst(ctx, vision.BurstParams{
		Count:      in.N,
		PeriodMs:   in.PeriodMs,
		SaveDir:    in.SaveDir,
		Format:     in.Format,
		Warmup:     in.Warmup,
		DurationMs: in.DurationMs,
	})
	if err != nil {
		return nil, burstOutput{RunID: res.RunID, Paths: res.Paths, Error: err.Error()}, nil
	}
	return nil, burstOutput{
		OK:         true,
		RunID:      res.RunID,
		Paths:      res.Paths,
		MIME:       res.MIME,
		Width:      ptr(res.Width),
		Height:     ptr(res.Height),
		N:          ptr(len(res.Paths)),
		PeriodMs:   ptr(res.PeriodMs),
		DurationMs: ptr(res.DurationMs),
		SaveDir:    res.SaveDir,
	}, nil
}

func (s *Server) visionStop(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, stopOutput, error) {
	s.session.Close()
	return nil, stopOutput{OK: true}, nil
}
