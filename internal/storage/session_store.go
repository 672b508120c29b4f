// Package storage はHTTP越しのスキャンセッションをメモリで保持する。
package storage

import (
	"errors"
	"sync"

	"smartinventory/internal/usecase"
)

var ErrSessionNotFound = errors.New("scan session not found")

// 1セッション分。フレーム処理と停止はこのロックの中で行う。
type entry struct {
	mu      sync.Mutex
	session usecase.ScanSession
	removed bool
}

type SessionStore struct {
	sessions map[string]*entry
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*entry),
	}
}

func (s *SessionStore) Set(session usecase.ScanSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &entry{session: session}
}

func (s *SessionStore) Get(sessionID string) (usecase.ScanSession, bool) {
	s.mu.RLock()
	e, exists := s.sessions[sessionID]
	s.mu.RUnlock()
	if !exists {
		return usecase.ScanSession{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session, !e.removed
}

// Update はセッションのロックを取って fn を実行し、返った値で置き換える。
// fn がエラーを返しても返ったセッションは保存する。
func (s *SessionStore) Update(sessionID string, fn func(usecase.ScanSession) (usecase.ScanSession, error)) error {
	s.mu.RLock()
	e, exists := s.sessions[sessionID]
	s.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return ErrSessionNotFound
	}

	next, err := fn(e.session)
	e.session = next
	return err
}

// Remove はセッションのロックを取って fn（停止処理）を実行し、一覧から消す。
func (s *SessionStore) Remove(sessionID string, fn func(usecase.ScanSession) (usecase.ScanSession, error)) (usecase.ScanSession, error) {
	s.mu.Lock()
	e, exists := s.sessions[sessionID]
	if exists {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !exists {
		return usecase.ScanSession{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return usecase.ScanSession{}, ErrSessionNotFound
	}
	e.removed = true

	last, err := fn(e.session)
	return last, err
}

// IDs は保持中のセッションID
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
