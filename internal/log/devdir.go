package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/n1nt3ndon/soloclaw/internal/message"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
)

// DevRequest is the request data saved to a JSON file in DEV_DIR.
type DevRequest struct {
	Turn      int                            `json:"turn"`
	Timestamp time.Time                      `json:"timestamp"`
	Provider  string                         `json:"provider"`
	Model     string                         `json:"model"`
	MaxTokens int                            `json:"max_tokens"`
	System    string                         `json:"system,omitempty"`
	Tools     []modelclient.ToolSchema       `json:"tools,omitempty"`
	Messages  []message.ConversationMessage  `json:"messages"`
}

// DevResponse is the response data saved to a JSON file in DEV_DIR.
type DevResponse struct {
	Turn      int                       `json:"turn"`
	Timestamp time.Time                 `json:"timestamp"`
	Provider  string                    `json:"provider"`
	Content   []message.ContentBlock    `json:"content,omitempty"`
	Usage     modelclient.Usage         `json:"usage"`
}

// WriteDevRequest writes request data to a JSON file in DEV_DIR.
func WriteDevRequest(providerName string, req modelclient.Request, turn int) {
	if !devEnabled {
		return
	}
	dr := DevRequest{
		Turn:      turn,
		Timestamp: time.Now().UTC(),
		Provider:  providerName,
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Tools:     req.Tools,
		Messages:  req.Messages,
	}
	filename := filepath.Join(devDir, fmt.Sprintf("turn-%03d-request.json", turn))
	writeJSON(filename, dr)
}

// WriteDevResponse writes response data to a JSON file in DEV_DIR.
func WriteDevResponse(providerName string, resp modelclient.CollectedResponse, turn int) {
	if !devEnabled {
		return
	}
	dr := DevResponse{
		Turn:      turn,
		Timestamp: time.Now().UTC(),
		Provider:  providerName,
		Content:   resp.Content,
		Usage:     resp.Usage,
	}
	filename := filepath.Join(devDir, fmt.Sprintf("turn-%03d-response.json", turn))
	writeJSON(filename, dr)
}

func writeJSON(filename string, data any) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filename, jsonData, 0o644)
}
