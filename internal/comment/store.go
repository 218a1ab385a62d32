package comment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/juju/clock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"whiteboard-backend/internal/config"
)

// DeletionChannel 코멘트 삭제 이벤트 채널
const DeletionChannel = "comment_deletions"

// DeletionEvent 씬의 코멘트 요소가 삭제되었음을 스레드 저장소 구독자에게 알린다
type DeletionEvent struct {
	SceneID    string    `json:"sceneId"`
	CommentIDs []string  `json:"commentIds"`
	DeletedBy  string    `json:"deletedBy,omitempty"`
	DeletedAt  time.Time `json:"deletedAt"`
}

// Store Redis 기반 코멘트 스레드 저장소
type Store struct {
	client *redis.Client
	clock  clock.Clock
	log    zerolog.Logger
}

// NewRedisClient Redis 연결 후 ping
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewStore Store 생성
func NewStore(client *redis.Client, clk clock.Clock, log zerolog.Logger) *Store {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Store{client: client, clock: clk, log: log}
}

func deletedKey(sceneID string) string {
	return "scene:" + sceneID + ":comments:deleted"
}

// MarkDeleted 삭제된 코멘트 ID 를 기록하고 이벤트 발행
func (s *Store) MarkDeleted(ctx context.Context, sceneID, actor string, commentIDs []string) error {
	if len(commentIDs) == 0 {
		return nil
	}

	event := DeletionEvent{
		SceneID:    sceneID,
		CommentIDs: commentIDs,
		DeletedBy:  actor,
		DeletedAt:  s.clock.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	members := make([]interface{}, len(commentIDs))
	for i, id := range commentIDs {
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, deletedKey(sceneID), members...)
	pipe.Publish(ctx, DeletionChannel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark comments deleted: %w", err)
	}

	s.log.Info().
		Str("scene_id", sceneID).
		Strs("comment_ids", commentIDs).
		Msg("comment threads marked deleted")
	return nil
}

// DeletedCommentIDs 씬에서 삭제된 코멘트 ID (정렬됨)
func (s *Store) DeletedCommentIDs(ctx context.Context, sceneID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, deletedKey(sceneID)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// IsDeleted 코멘트 삭제 여부
func (s *Store) IsDeleted(ctx context.Context, sceneID, commentID string) (bool, error) {
	return s.client.SIsMember(ctx, deletedKey(sceneID), commentID).Result()
}

// Subscribe 삭제 이벤트 구독
// ctx 가 끝나면 채널이 닫힌다.
func (s *Store) Subscribe(ctx context.Context) (<-chan DeletionEvent, error) {
	pubsub := s.client.Subscribe(ctx, DeletionChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", DeletionChannel, err)
	}

	out := make(chan DeletionEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event DeletionEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					s.log.Warn().Err(err).Msg("invalid comment deletion event")
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Health Redis 상태 확인
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 연결 종료
func (s *Store) Close() error {
	return s.client.Close()
}
