package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/rs/zerolog"

	"whiteboard-backend/internal/action"
	"whiteboard-backend/internal/element"
	"whiteboard-backend/internal/history"
	"whiteboard-backend/internal/model"
	"whiteboard-backend/internal/scene"
)

// ErrInvalidScene 요소 배열이 씬 문서로 유효하지 않음
var ErrInvalidScene = errors.New("invalid scene document")

// SceneStore 씬 영속화
type SceneStore interface {
	CreateScene(ctx context.Context, scene *model.Scene) error
	LoadScene(ctx context.Context, sceneID string) (*model.Scene, []model.SceneHistoryEntry, error)
	SaveScene(ctx context.Context, scene *model.Scene, entries []model.SceneHistoryEntry) error
}

// CommentNotifier 코멘트 스레드 저장소에 삭제 통지
type CommentNotifier interface {
	MarkDeleted(ctx context.Context, sceneID, actor string, commentIDs []string) error
}

// Broadcaster 씬 구독자에게 변경 전달
type Broadcaster interface {
	Broadcast(sceneID string, update SceneUpdate)
}

// SceneUpdate 구독자에게 보내는 씬 변경
type SceneUpdate struct {
	SceneID           string            `json:"sceneId"`
	Version           int64             `json:"version"`
	Action            string            `json:"action"`
	Actor             string            `json:"actor,omitempty"`
	Elements          []element.Element `json:"elements"`
	DeletedCommentIDs []string          `json:"deletedCommentIds,omitempty"`
	At                time.Time         `json:"at"`
}

// SceneState 씬 조회 결과
type SceneState struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	OwnerID   int64             `json:"ownerId"`
	Version   int64             `json:"version"`
	Elements  []element.Element `json:"elements"`
	AppState  scene.AppState    `json:"appState"`
	CanUndo   bool              `json:"canUndo"`
	CanRedo   bool              `json:"canRedo"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// ActionInput 액션 요청
// Name 이 비어 있으면 Key 로 액션을 찾는다.
type ActionInput struct {
	Name              string
	Key               *action.KeyEvent
	Actor             *scene.Identity
	CanDeleteComments bool
	ForceDeleteIDs    []string
}

// ActionOutcome 액션 실행 결과
type ActionOutcome struct {
	Action            string      `json:"action"`
	Applied           bool        `json:"applied"`
	CommitToHistory   bool        `json:"commitToHistory"`
	SyncHistory       bool        `json:"syncHistory"`
	DeletedCommentIDs []string    `json:"deletedCommentIds,omitempty"`
	Scene             *SceneState `json:"scene"`
}

// document 메모리에 올라온 씬
type document struct {
	mu         sync.Mutex
	meta       model.Scene
	elements   []element.Element
	appState   scene.AppState
	history    *history.History
	lastAccess time.Time
	evicted    bool // 메모리에서 내려감, 잠근 쪽은 다시 조회해야 한다
}

// SceneService 씬별 문서를 하나의 쓰기 주체로 직렬화해 처리
type SceneService struct {
	store    SceneStore
	comments CommentNotifier
	hub      Broadcaster
	actions  *action.Registry
	clock    clock.Clock
	log      zerolog.Logger
	limit    int

	mu   sync.Mutex
	docs map[string]*document
}

// SceneServiceConfig SceneService 의존성
type SceneServiceConfig struct {
	Store        SceneStore
	Comments     CommentNotifier
	Hub          Broadcaster
	Actions      *action.Registry
	Clock        clock.Clock
	Logger       zerolog.Logger
	HistoryLimit int
}

// NewSceneService SceneService 생성
func NewSceneService(cfg SceneServiceConfig) *SceneService {
	if cfg.Actions == nil {
		cfg.Actions = action.DefaultRegistry()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = history.DefaultLimit
	}
	return &SceneService{
		store:    cfg.Store,
		comments: cfg.Comments,
		hub:      cfg.Hub,
		actions:  cfg.Actions,
		clock:    cfg.Clock,
		log:      cfg.Logger.With().Str("component", "scene").Logger(),
		limit:    cfg.HistoryLimit,
		docs:     make(map[string]*document),
	}
}

// Create 빈 씬 생성
func (s *SceneService) Create(ctx context.Context, ownerID int64, name string) (*SceneState, error) {
	appState := scene.NewAppState()
	appState.Name = name

	meta := model.Scene{
		ID:      uuid.New().String(),
		Name:    name,
		OwnerID: ownerID,
	}
	elements := []element.Element{}
	if err := encodeDocument(&meta, elements, appState); err != nil {
		return nil, err
	}
	if err := s.store.CreateScene(ctx, &meta); err != nil {
		return nil, fmt.Errorf("create scene: %w", err)
	}

	doc := &document{
		meta:       meta,
		elements:   elements,
		appState:   appState,
		history:    history.New(s.limit),
		lastAccess: s.clock.Now(),
	}
	doc.history.Record(elements, appState)

	s.mu.Lock()
	s.docs[meta.ID] = doc
	s.mu.Unlock()

	s.log.Info().Str("scene_id", meta.ID).Int64("owner_id", ownerID).Msg("scene created")
	return doc.state(), nil
}

// Get 씬 조회
func (s *SceneService) Get(ctx context.Context, sceneID string) (*SceneState, error) {
	doc, err := s.lockDocument(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	defer doc.mu.Unlock()
	return doc.state(), nil
}

// Commit 클라이언트가 편집한 요소/상태로 교체하고 히스토리에 기록
// 기존 요소가 빠진 배열은 거부한다 (삭제는 isDeleted 로만 표현).
func (s *SceneService) Commit(ctx context.Context, sceneID, actor string, elements []element.Element, appState scene.AppState) (*SceneState, error) {
	doc, err := s.lockDocument(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	defer doc.mu.Unlock()

	if err := validateCommit(doc.elements, elements); err != nil {
		return nil, err
	}
	if appState.SelectedElementIDs == nil {
		appState.SelectedElementIDs = map[string]bool{}
	}

	undo, redo := doc.history.Stacks()
	result := scene.Result{Elements: elements, AppState: appState, CommitToHistory: true}
	if err := s.apply(ctx, doc, result, undo, redo); err != nil {
		return nil, err
	}
	s.broadcast(doc, "commit", actor, nil)
	return doc.state(), nil
}

// Perform 이름 또는 단축키로 액션 실행
// 액션이 false 를 반환하면 씬 상태는 그대로이고 Applied 가 false 이다.
func (s *SceneService) Perform(ctx context.Context, sceneID string, input ActionInput) (*ActionOutcome, error) {
	act, err := s.actions.Lookup(input.Name, input.Key)
	if err != nil {
		return nil, err
	}

	doc, err := s.lockDocument(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	defer doc.mu.Unlock()

	actx := action.Context{
		Actor:             input.Actor,
		CanDeleteComments: input.CanDeleteComments,
		ForceDeleteIDs:    input.ForceDeleteIDs,
		History:           doc.history,
	}

	undo, redo := doc.history.Stacks()
	result, ok := act.Perform(doc.elements, doc.appState, actx)
	if !ok {
		return &ActionOutcome{Action: act.Name, Scene: doc.state()}, nil
	}

	if err := s.apply(ctx, doc, result, undo, redo); err != nil {
		return nil, err
	}

	actor := actorEmail(input.Actor)
	s.notifyComments(ctx, doc.meta.ID, actor, result.DeletedCommentIDs)
	s.broadcast(doc, act.Name, actor, result.DeletedCommentIDs)

	s.log.Debug().
		Str("scene_id", doc.meta.ID).
		Str("action", act.Name).
		Bool("commit", result.CommitToHistory).
		Int("deleted_comments", len(result.DeletedCommentIDs)).
		Msg("action performed")

	return &ActionOutcome{
		Action:            act.Name,
		Applied:           true,
		CommitToHistory:   result.CommitToHistory,
		SyncHistory:       result.SyncHistory,
		DeletedCommentIDs: result.DeletedCommentIDs,
		Scene:             doc.state(),
	}, nil
}

// ForceDeleteComments 호스트 권한으로 요소 삭제 (선택과 무관)
// 현재 선택은 삭제 대상에 포함하지 않고, 삭제된 요소만 선택에서 빠진다.
func (s *SceneService) ForceDeleteComments(ctx context.Context, sceneID, actor string, elementIDs []string) (*ActionOutcome, error) {
	doc, err := s.lockDocument(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	defer doc.mu.Unlock()

	appState := doc.appState.Clone()
	appState.SelectedElementIDs = map[string]bool{}
	appState.EditingLinearElement = nil

	undo, redo := doc.history.Stacks()
	result, _ := scene.DeleteSelection(doc.elements, appState, scene.DeletePolicy{ForceDeleteIDs: elementIDs})
	result.AppState = keepSessionState(doc.appState, result)
	result.SyncHistory = true

	if err := s.apply(ctx, doc, result, undo, redo); err != nil {
		return nil, err
	}

	s.notifyComments(ctx, doc.meta.ID, actor, result.DeletedCommentIDs)
	s.broadcast(doc, "forceDelete", actor, result.DeletedCommentIDs)

	return &ActionOutcome{
		Action:            action.NameDeleteSelected,
		Applied:           true,
		SyncHistory:       true,
		DeletedCommentIDs: result.DeletedCommentIDs,
		Scene:             doc.state(),
	}, nil
}

// EvictIdle maxIdle 동안 사용되지 않은 문서를 메모리에서 내린다
func (s *SceneService) EvictIdle(maxIdle time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, doc := range s.docs {
		doc.mu.Lock()
		if now.Sub(doc.lastAccess) >= maxIdle {
			doc.evicted = true
			delete(s.docs, id)
			evicted++
		}
		doc.mu.Unlock()
	}
	if evicted > 0 {
		s.log.Info().Int("count", evicted).Msg("idle scenes evicted")
	}
	return evicted
}

// RunJanitor ctx 가 끝날 때까지 interval 마다 EvictIdle 실행
func (s *SceneService) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(interval):
			s.EvictIdle(maxIdle)
		}
	}
}

// Loaded 메모리에 올라온 씬 수
func (s *SceneService) Loaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// apply 결과를 문서에 반영하고 저장, 실패 시 이전 상태로 되돌린다
func (s *SceneService) apply(ctx context.Context, doc *document, result scene.Result, undo, redo []history.Entry) error {
	prevElements, prevAppState := doc.elements, doc.appState

	doc.elements = result.Elements
	doc.appState = result.AppState
	switch {
	case result.CommitToHistory:
		doc.history.Record(doc.elements, doc.appState)
	case result.SyncHistory:
		doc.history.SyncCurrent(doc.elements, doc.appState)
	}

	if err := s.persist(ctx, doc); err != nil {
		doc.elements, doc.appState = prevElements, prevAppState
		doc.history.Restore(undo, redo)
		return err
	}
	return nil
}

func (s *SceneService) persist(ctx context.Context, doc *document) error {
	meta := doc.meta
	meta.Name = doc.appState.Name
	if meta.Name == "" {
		meta.Name = doc.meta.Name
	}
	if err := encodeDocument(&meta, doc.elements, doc.appState); err != nil {
		return err
	}

	entries, err := encodeHistory(doc.history)
	if err != nil {
		return err
	}
	if err := s.store.SaveScene(ctx, &meta, entries); err != nil {
		return fmt.Errorf("save scene %s: %w", meta.ID, err)
	}

	doc.meta = meta
	doc.meta.UpdatedAt = s.clock.Now()
	return nil
}

func (s *SceneService) notifyComments(ctx context.Context, sceneID, actor string, commentIDs []string) {
	if s.comments == nil || len(commentIDs) == 0 {
		return
	}
	if err := s.comments.MarkDeleted(ctx, sceneID, actor, commentIDs); err != nil {
		// 씬은 이미 저장되었으므로 통지 실패는 기록만 한다
		s.log.Error().Err(err).Str("scene_id", sceneID).Strs("comment_ids", commentIDs).Msg("comment store notify failed")
	}
}

func (s *SceneService) broadcast(doc *document, actionName, actor string, deletedCommentIDs []string) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(doc.meta.ID, SceneUpdate{
		SceneID:           doc.meta.ID,
		Version:           doc.meta.Version,
		Action:            actionName,
		Actor:             actor,
		Elements:          doc.elements,
		DeletedCommentIDs: deletedCommentIDs,
		At:                s.clock.Now().UTC(),
	})
}

// lockDocument 문서를 잠근 채로 반환
// 잠그기 전에 내려간 문서면 다시 조회한다. 호출자가 doc.mu 를 풀어야 한다.
func (s *SceneService) lockDocument(ctx context.Context, sceneID string) (*document, error) {
	for {
		doc, err := s.document(ctx, sceneID)
		if err != nil {
			return nil, err
		}
		doc.mu.Lock()
		if !doc.evicted {
			doc.lastAccess = s.clock.Now()
			return doc, nil
		}
		doc.mu.Unlock()
	}
}

// document 메모리의 문서 반환, 없으면 저장소에서 읽는다
func (s *SceneService) document(ctx context.Context, sceneID string) (*document, error) {
	s.mu.Lock()
	doc, ok := s.docs[sceneID]
	s.mu.Unlock()
	if ok {
		return doc, nil
	}

	meta, entries, err := s.store.LoadScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	loaded, err := s.decode(meta, entries)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.docs[sceneID]; ok {
		return existing, nil
	}
	s.docs[sceneID] = loaded
	return loaded, nil
}

func (s *SceneService) decode(meta *model.Scene, entries []model.SceneHistoryEntry) (*document, error) {
	doc := &document{
		meta:       *meta,
		history:    history.New(s.limit),
		lastAccess: s.clock.Now(),
	}
	if err := json.Unmarshal([]byte(meta.Elements), &doc.elements); err != nil {
		return nil, fmt.Errorf("%w: elements: %v", ErrInvalidScene, err)
	}
	if doc.elements == nil {
		doc.elements = []element.Element{}
	}
	doc.appState = scene.NewAppState()
	if err := json.Unmarshal([]byte(meta.AppState), &doc.appState); err != nil {
		return nil, fmt.Errorf("%w: app state: %v", ErrInvalidScene, err)
	}
	if doc.appState.SelectedElementIDs == nil {
		doc.appState.SelectedElementIDs = map[string]bool{}
	}

	undo, redo, err := decodeHistory(entries)
	if err != nil {
		return nil, err
	}
	doc.history.Restore(undo, redo)
	if len(undo) == 0 {
		doc.history.Record(doc.elements, doc.appState)
	}
	return doc, nil
}

func (d *document) state() *SceneState {
	elements := make([]element.Element, len(d.elements))
	for i, el := range d.elements {
		elements[i] = el.Clone()
	}
	return &SceneState{
		ID:        d.meta.ID,
		Name:      d.meta.Name,
		OwnerID:   d.meta.OwnerID,
		Version:   d.meta.Version,
		Elements:  elements,
		AppState:  d.appState.Clone(),
		CanUndo:   d.history.CanUndo(),
		CanRedo:   d.history.CanRedo(),
		UpdatedAt: d.meta.UpdatedAt,
	}
}

// validateCommit 기존 요소 ID 가 모두 남아 있고 ID 가 중복되지 않는지 확인
// 코멘트의 삭제 상태, 타입, 작성자는 커밋으로 바꿀 수 없다 (삭제 액션만 가능).
func validateCommit(prev, next []element.Element) error {
	seen := make(map[string]bool, len(next))
	for _, el := range next {
		if el.ID == "" {
			return fmt.Errorf("%w: element without id", ErrInvalidScene)
		}
		if seen[el.ID] {
			return fmt.Errorf("%w: duplicate element %s", ErrInvalidScene, el.ID)
		}
		seen[el.ID] = true
	}

	nextByID := element.ToMap(next)
	for _, el := range prev {
		committed, ok := nextByID[el.ID]
		if !ok {
			return fmt.Errorf("%w: element %s removed", ErrInvalidScene, el.ID)
		}
		if el.Kind() != element.KindComment && committed.Kind() != element.KindComment {
			continue
		}
		if committed.Kind() != el.Kind() {
			return fmt.Errorf("%w: comment %s changed type", ErrInvalidScene, el.ID)
		}
		if committed.Comment.Owner != el.Comment.Owner || committed.Comment.CommentID != el.Comment.CommentID {
			return fmt.Errorf("%w: comment %s owner changed", ErrInvalidScene, el.ID)
		}
		if committed.IsDeleted != el.IsDeleted {
			return fmt.Errorf("%w: comment %s deletion state changed", ErrInvalidScene, el.ID)
		}
	}
	return nil
}

// keepSessionState 강제 삭제 후에도 다른 사용자의 선택/도구 상태를 유지
// 삭제된 요소를 가리키는 항목만 정리한다.
func keepSessionState(prev scene.AppState, result scene.Result) scene.AppState {
	deleted := make(map[string]bool)
	for _, el := range result.Elements {
		if el.IsDeleted {
			deleted[el.ID] = true
		}
	}

	next := prev.Clone()
	for id := range next.SelectedElementIDs {
		if deleted[id] {
			delete(next.SelectedElementIDs, id)
		}
	}
	next.ActiveComment = result.AppState.ActiveComment
	if result.AppState.EditingGroupID == nil {
		next.EditingGroupID = nil
	}
	if next.EditingLinearElement != nil && deleted[next.EditingLinearElement.ElementID] {
		next.EditingLinearElement = nil
	}
	if next.MultiElement != nil && deleted[*next.MultiElement] {
		next.MultiElement = nil
	}
	return next
}

func actorEmail(actor *scene.Identity) string {
	if actor == nil {
		return ""
	}
	return actor.Email
}
