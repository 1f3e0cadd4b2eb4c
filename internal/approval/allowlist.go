package approval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// ConfigError wraps a failure loading or parsing the approvals file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("approvals config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Store owns the in-memory ApprovalsFile and its on-disk persistence.
// Concurrent writers are not supported by the underlying file format;
// callers serialize through the Store's mutex.
type Store struct {
	mu   sync.Mutex
	path string
	file *ApprovalsFile
}

// NewStore creates a Store backed by path. Call Load before use.
func NewStore(path string) *Store {
	return &Store{path: path, file: NewApprovalsFile()}
}

// Load reads the approvals file from disk. A missing file is not an error:
// the Store keeps its default, empty ApprovalsFile. A malformed file fails
// with a *ConfigError.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.file = NewApprovalsFile()
		return nil
	}
	if err != nil {
		return &ConfigError{Path: s.path, Err: err}
	}

	var parsed ApprovalsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return &ConfigError{Path: s.path, Err: err}
	}
	if parsed.Tools == nil {
		parsed.Tools = map[string]*ToolConfig{}
	}
	if parsed.Version == 0 {
		parsed.Version = 1
	}
	s.file = &parsed
	return nil
}

// Save writes the current in-memory file to disk as pretty JSON, creating
// parent directories as needed. The write is atomic: a temp file is written
// alongside the destination and renamed into place.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create approvals dir: %w", err)
	}
	data, err := json.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal approvals file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".approvals-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp approvals file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp approvals file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp approvals file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename approvals file: %w", err)
	}
	return nil
}

// ToolSecurity looks up the security configuration for name: exact tool
// name, then the "*" wildcard, then the ReadOnlyTools default, then the
// file defaults.
func (s *Store) ToolSecurity(name string) ToolSecurity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toolSecurityLocked(name)
}

func (s *Store) toolSecurityLocked(name string) ToolSecurity {
	if cfg, ok := s.file.Tools[name]; ok {
		return cfg.ToolSecurity
	}
	if cfg, ok := s.file.Tools[WildcardTool]; ok {
		return cfg.ToolSecurity
	}
	if ReadOnlyTools[name] {
		return ToolSecurity{Security: SecurityFull, Ask: AskOff, AskFallback: FallbackDeny}
	}
	return s.file.Defaults
}

// ReadOnlyTools is the fixed set of tools that never mutate state, distinct
// from the safe-bin list Analyze consults for bash. A read-only tool with
// no explicit config-file entry of its own, and no "*" wildcard entry in
// the file, runs unattended rather than falling through to the allowlist
// defaults.
var ReadOnlyTools = map[string]bool{
	"read_file": true,
	"glob":      true,
	"grep":      true,
}

// IsAllowed reports whether pattern matches any allowlist entry recorded for
// tool. Matching is glob-based with a literal-equality fallback when an
// entry's pattern fails to compile as a glob. The "*" wildcard tool is never
// consulted here, only for ToolSecurity fallback.
func (s *Store) IsAllowed(tool, pattern string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.file.Tools[tool]
	if !ok {
		return false
	}
	for _, entry := range cfg.Allowlist {
		if matchPattern(entry.Pattern, pattern) {
			return true
		}
	}
	return false
}

func matchPattern(entryPattern, candidate string) bool {
	g, err := glob.Compile(entryPattern)
	if err != nil {
		return entryPattern == candidate
	}
	return g.Match(candidate)
}

// Add appends pattern to tool's allowlist, creating the tool's config
// (inheriting the file defaults) if absent. Adding a pattern already present
// is a no-op. It does not persist; call Save separately.
func (s *Store) Add(tool, pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.file.Tools[tool]
	if !ok {
		cfg = &ToolConfig{ToolSecurity: s.file.Defaults}
		s.file.Tools[tool] = cfg
	}
	for _, entry := range cfg.Allowlist {
		if entry.Pattern == pattern {
			return
		}
	}
	cfg.Allowlist = append(cfg.Allowlist, AllowlistEntry{
		Pattern: pattern,
		AddedAt: time.Now(),
	})
}
