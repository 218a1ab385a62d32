package handler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"whiteboard-backend/internal/auth"
	"whiteboard-backend/internal/comment"
	"whiteboard-backend/internal/service"
	"whiteboard-backend/internal/session"
)

// SceneHub 씬 단위 WebSocket 구독자 관리
type SceneHub struct {
	scenes       map[string]map[*session.Session]bool // sceneID -> sessions
	mu           sync.RWMutex
	bufferSize   int
	writeTimeout time.Duration
	log          zerolog.Logger
}

// SceneWSMessage 씬 WebSocket 메시지
type SceneWSMessage struct {
	Type    string      `json:"type"` // scene.update, comment.deleted, ping, pong
	Payload interface{} `json:"payload,omitempty"`
}

// NewSceneHub SceneHub 생성
func NewSceneHub(bufferSize int, writeTimeout time.Duration, log zerolog.Logger) *SceneHub {
	return &SceneHub{
		scenes:       make(map[string]map[*session.Session]bool),
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
		log:          log.With().Str("component", "scene_hub").Logger(),
	}
}

// Register 세션 등록
func (h *SceneHub) Register(s *session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.scenes[s.SceneID] == nil {
		h.scenes[s.SceneID] = make(map[*session.Session]bool)
	}
	h.scenes[s.SceneID][s] = true
}

// Unregister 세션 제거 및 종료
func (h *SceneHub) Unregister(s *session.Session) {
	h.mu.Lock()
	delete(h.scenes[s.SceneID], s)
	if len(h.scenes[s.SceneID]) == 0 {
		delete(h.scenes, s.SceneID)
	}
	h.mu.Unlock()

	s.Close()
}

// Broadcast 씬 구독자 전체에 변경 전달
func (h *SceneHub) Broadcast(sceneID string, update service.SceneUpdate) {
	h.send(sceneID, SceneWSMessage{Type: "scene.update", Payload: update})
}

// RelayCommentDeletions 코멘트 저장소 이벤트를 씬 구독자에게 전달
// 다른 인스턴스에서 삭제된 코멘트도 이 경로로 전달된다.
func (h *SceneHub) RelayCommentDeletions(ctx context.Context, events <-chan comment.DeletionEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			h.send(event.SceneID, SceneWSMessage{Type: "comment.deleted", Payload: event})
		}
	}
}

func (h *SceneHub) send(sceneID string, msg SceneWSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("scene_id", sceneID).Msg("marshal scene message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.scenes[sceneID] {
		if !s.Enqueue(data) {
			h.log.Warn().Str("scene_id", sceneID).Str("session_id", s.ID).Msg("subscriber too slow, message dropped")
		}
	}
}

// Subscribers 씬 구독자 수
func (h *SceneHub) Subscribers(sceneID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scenes[sceneID])
}

// HandleWebSocket 씬 구독 WebSocket 처리
// 인증/권한 미들웨어가 sceneID, userID, email 을 Locals 에 넣어 둔다.
func (h *SceneHub) HandleWebSocket(c *websocket.Conn) {
	// 패닉 복구 - 서버 크래시 방지
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("scene websocket panic recovered")
		}
	}()

	sceneID, _ := c.Locals(localSceneID).(string)
	userID, ok := c.Locals(auth.LocalUserID).(int64)
	if !ok || sceneID == "" {
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","message":"invalid session"}`))
		_ = c.Close()
		return
	}
	email, _ := c.Locals(auth.LocalEmail).(string)

	s := session.New(sceneID, userID, email, h.bufferSize)
	h.Register(s)
	h.log.Info().Str("scene_id", sceneID).Int64("user_id", userID).Str("session_id", s.ID).Msg("scene subscriber connected")

	// 연결 해제 시 정리
	defer func() {
		h.Unregister(s)
		_ = c.Close()
		h.log.Info().Str("session_id", s.ID).Dur("duration", s.Duration()).Msg("scene subscriber disconnected")
	}()

	go h.writeLoop(c, s)

	// 연결 유지를 위한 ping/pong 처리
	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			break
		}

		var msg SceneWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			pong, _ := json.Marshal(SceneWSMessage{Type: "pong"})
			s.Enqueue(pong)
		}
	}
}

// writeLoop 세션 큐를 소켓으로 내보낸다 (소켓 쓰기는 이 고루틴만 수행)
func (h *SceneHub) writeLoop(c *websocket.Conn, s *session.Session) {
	for msg := range s.Outbound() {
		if h.writeTimeout > 0 {
			_ = c.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		}
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn().Err(err).Str("session_id", s.ID).Msg("scene websocket write failed")
			_ = c.Close()
			return
		}
	}
}
