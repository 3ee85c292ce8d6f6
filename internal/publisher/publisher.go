// Package publisher posts the generated summary to the pull request thread.
package publisher

import (
	"context"
	"sync"
)

type Publisher interface {
	PostComment(ctx context.Context, prID, body string) error
}

type Comment struct {
	PR   string
	Body string
}

// Memory keeps posted comments in memory.
type Memory struct {
	mu       sync.Mutex
	Comments []Comment
	Err      error
}

func (m *Memory) PostComment(_ context.Context, prID, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Comments = append(m.Comments, Comment{PR: prID, Body: body})
	return nil
}

var (
	_ Publisher = (*Memory)(nil)
	_ Publisher = (*CLI)(nil)
	_ Publisher = (*API)(nil)
)
