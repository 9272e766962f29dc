package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload          CommandType = "RELOAD"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandListWindows     CommandType = "LIST_WINDOWS"
	CommandAction          CommandType = "ACTION"
	CommandSwitchWorkspace CommandType = "SWITCH_WORKSPACE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount      int    `json:"window_count"`
	Workspace        int    `json:"workspace"`
	WorkspaceName    string `json:"workspace_name"`
	WorkspaceCount   int    `json:"workspace_count"`
	Focused          string `json:"focused,omitempty"`
	Feedback         string `json:"feedback,omitempty"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	WindowManagerPID int    `json:"pid"`
}

// WindowInfo describes one managed window.
type WindowInfo struct {
	Frame     uint32   `json:"frame"`
	Clients   []uint32 `json:"clients"`
	Title     string   `json:"title"`
	Class     string   `json:"class"`
	Workspace int      `json:"workspace"`
	Layer     int      `json:"layer"`
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	State     string   `json:"state"`
	Focused   bool     `json:"focused,omitempty"`
	Iconic    bool     `json:"iconic,omitempty"`
	Shaded    bool     `json:"shaded,omitempty"`
	Maximized bool     `json:"maximized,omitempty"`
	Stuck     bool     `json:"stuck,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS, top of the
// stack first.
type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// ActionPayload names a key binding action to run on the focused window.
type ActionPayload struct {
	Name string `json:"name"`
}

// SwitchWorkspacePayload selects a workspace by index.
type SwitchWorkspacePayload struct {
	Workspace int `json:"workspace"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
