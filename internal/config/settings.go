// Package config provides layered settings for soloclaw. Settings are loaded
// from multiple sources with the following priority (lowest to highest):
//  1. ~/.soloclaw/settings.json (user level)
//  2. .soloclaw/settings.json (project level)
//  3. .soloclaw/settings.local.json (project local, gitignored)
//
// Environment variables are not read by this package.
package config

import "time"

// Settings is the runtime configuration the turn loop and approval engine
// are wired from. Tool-level allow/deny/ask rules live in the approvals
// store, not here: Settings only carries what the model client, the loop,
// and the system prompt need at startup.
type Settings struct {
	// Model is the model identifier passed to the streaming client.
	Model string `json:"model,omitempty"`

	// MaxTokens bounds each turn's response.
	MaxTokens int `json:"maxTokens,omitempty"`

	// ApprovalsPath overrides where the allowlist is persisted.
	ApprovalsPath string `json:"approvalsPath,omitempty"`

	// ApprovalTimeout bounds how long the loop waits on a pending
	// approval before treating it as denied. Zero means use
	// agent.DefaultApprovalTimeout.
	ApprovalTimeout time.Duration `json:"approvalTimeout,omitempty"`

	// SystemPromptExtra is appended verbatim to the assembled system
	// prompt, after memory and built-in sections.
	SystemPromptExtra string `json:"systemPromptExtra,omitempty"`
}

// NewSettings returns the zero-value defaults. An empty Model is filled in
// by cmd/soloclaw (its --model flag or built-in default), and a zero
// MaxTokens is replaced by tui.Run's default.
func NewSettings() *Settings {
	return &Settings{}
}
