package config

// MergeSettings merges two Settings, with overlay's non-zero fields
// winning over base's.
func MergeSettings(base, overlay *Settings) *Settings {
	if base == nil {
		return overlay
	}
	if overlay == nil {
		return base
	}

	result := *base
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	if overlay.MaxTokens != 0 {
		result.MaxTokens = overlay.MaxTokens
	}
	if overlay.ApprovalsPath != "" {
		result.ApprovalsPath = overlay.ApprovalsPath
	}
	if overlay.ApprovalTimeout != 0 {
		result.ApprovalTimeout = overlay.ApprovalTimeout
	}
	if overlay.SystemPromptExtra != "" {
		result.SystemPromptExtra = overlay.SystemPromptExtra
	}
	return &result
}
