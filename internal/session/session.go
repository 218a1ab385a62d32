package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State WebSocket 구독 상태
type State int

const (
	StateSubscribed State = iota // 씬 변경 수신 중
	StateClosed                  // 연결 종료
)

// String 상태를 문자열로 반환
func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session 씬 구독 세션 (Thread-Safe)
type Session struct {
	ID          string
	SceneID     string
	UserID      int64
	Email       string
	ConnectedAt time.Time

	mu       sync.RWMutex
	state    State
	sent     uint64
	dropped  uint64
	outbound chan []byte
	ctx      context.Context
	cancel   context.CancelFunc
}

// New 새 세션 생성
func New(sceneID string, userID int64, email string, bufferSize int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	if bufferSize <= 0 {
		bufferSize = 1
	}

	return &Session{
		ID:          uuid.New().String(),
		SceneID:     sceneID,
		UserID:      userID,
		Email:       email,
		ConnectedAt: time.Now(),
		state:       StateSubscribed,
		outbound:    make(chan []byte, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Context 세션 컨텍스트 반환 (Close 시 취소)
func (s *Session) Context() context.Context {
	return s.ctx
}

// Outbound 전송 대기 메시지
func (s *Session) Outbound() <-chan []byte {
	return s.outbound
}

// Enqueue 메시지 전송 예약
// 버퍼가 가득 찼거나 닫힌 세션이면 버리고 false 를 반환한다.
func (s *Session) Enqueue(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return false
	}
	select {
	case s.outbound <- msg:
		s.sent++
		return true
	default:
		s.dropped++
		return false
	}
}

// GetState 현재 상태 조회
func (s *Session) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// GetStats 통계 조회
func (s *Session) GetStats() (sent, dropped uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sent, s.dropped
}

// Duration 연결 유지 시간
func (s *Session) Duration() time.Duration {
	return time.Since(s.ConnectedAt)
}

// Close 세션 정리
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}

	s.state = StateClosed
	s.cancel()
	close(s.outbound)
}

// IsClosed 세션 종료 여부 확인
func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state == StateClosed
}
