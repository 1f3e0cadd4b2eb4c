package tui

import "time"

const (
	defaultMaxTokens   = 8192
	doubleTapThreshold = 500 * time.Millisecond
	defaultWidth       = 80
	maxTextareaHeight  = 6
	minTextareaHeight  = 1
)
