// Package clipboard provides clipboard capabilities for deferred link recovery.
package clipboard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
)

// ErrUnsupported indicates no system clipboard is available.
var ErrUnsupported = errors.New("system clipboard unsupported")

// System is the operating system clipboard.
type System struct{}

// NewSystem returns the system clipboard, or ErrUnsupported when the
// platform has no clipboard utility.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, ErrUnsupported
	}
	return &System{}, nil
}

// HasURLs reports whether the clipboard holds link-shaped content. Desktop
// clipboards have no permission prompt, so this reads the value.
func (s *System) HasURLs() bool {
	content, err := clipboard.ReadAll()
	if err != nil {
		return false
	}
	return LooksLikeLink(content)
}

func (s *System) ReadString() (string, error) {
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return content, nil
}

func (s *System) Clear() error {
	if err := clipboard.WriteAll(""); err != nil {
		return fmt.Errorf("clearing clipboard: %w", err)
	}
	return nil
}

// Write replaces the clipboard content.
func (s *System) Write(content string) error {
	if err := clipboard.WriteAll(content); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard for tests and headless runs.
type Memory struct {
	mu       sync.Mutex
	content  string
	hasURLs  *bool
	clearErr error
	clears   int
}

// NewMemory creates a memory clipboard holding content.
func NewMemory(content string) *Memory {
	return &Memory{content: content}
}

// HasURLs reports the forced capability answer, or whether the content
// looks like a link.
func (m *Memory) HasURLs() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasURLs != nil {
		return *m.hasURLs
	}
	return LooksLikeLink(m.content)
}

func (m *Memory) ReadString() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content, nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.content = ""
	m.clears++
	return nil
}

// Write replaces the content.
func (m *Memory) Write(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	return nil
}

// Content returns the current content.
func (m *Memory) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// Clears returns how many successful clears happened.
func (m *Memory) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// ForceHasURLs pins the HasURLs answer regardless of content.
func (m *Memory) ForceHasURLs(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hasURLs = &v
}

// FailClear makes Clear return err until reset with nil.
func (m *Memory) FailClear(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearErr = err
}

// LooksLikeLink reports whether content is an absolute URL or a UUID.
func LooksLikeLink(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t\n") {
		return false
	}
	if _, err := uuid.Parse(trimmed); err == nil {
		return true
	}
	u, err := url.Parse(trimmed)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}
