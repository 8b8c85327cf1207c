// Package mcpserver exposes the camera session as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cjeanneret/visionmcp/internal/config"
	"github.com/cjeanneret/visionmcp/internal/debug"
	"github.com/cjeanneret/visionmcp/internal/vision"
)

// Name is the implementation name reported during initialization.
const Name = "Vision MCP"

// Server wires the vision session to an MCP server.
type Server struct {
	session *vision.Session
	mcp     *mcp.Server
}

// New registers every vision tool. Input defaults come from cfg.
func New(session *vision.Session, cfg *config.Config, version string) *Server {
	s := &Server{
		session: session,
		mcp: mcp.NewServer(
			&mcp.Implementation{Name: Name, Version: version},
			&mcp.ServerOptions{Logger: debug.Logger()},
		),
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_cameras",
		Description: "Probe camera indexes 0..max_index-1 and report which ones open.",
		InputSchema: listCamerasSchema(cfg),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: ptr(false)},
	}, s.listCameras)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "vision_start",
		Description: "Open the camera with optional size, fps and backend (auto, avfoundation, msmf, dshow, v4l2). A camera that is already open is left as is.",
		InputSchema: visionStartSchema(cfg),
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true, DestructiveHint: ptr(false), OpenWorldHint: ptr(false)},
	}, s.visionStart)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "vision_status",
		Description: "Report whether the camera is open and its negotiated properties.",
		InputSchema: emptySchema(),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: ptr(false)},
	}, s.visionStatus)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "vision_capture",
		Description: "Capture one frame into save_dir and return the saved path and metadata.",
		InputSchema: visionCaptureSchema(cfg),
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(false), OpenWorldHint: ptr(false)},
	}, s.visionCapture)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "vision_burst",
		Description: "Capture n frames spaced by period_ms and return their paths in capture order. If duration_ms > 0, n is round(duration_ms / period_ms).",
		InputSchema: visionBurstSchema(cfg),
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(false), OpenWorldHint: ptr(false)},
	}, s.visionBurst)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "vision_stop",
		Description: "Release the camera.",
		InputSchema: emptySchema(),
		Annotations: &mcp.ToolAnnotations{IdempotentHint: true, DestructiveHint: ptr(false), OpenWorldHint: ptr(false)},
	}, s.visionStop)

	return s
}

// Run serves MCP over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	debug.Info("Serving MCP over stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}
