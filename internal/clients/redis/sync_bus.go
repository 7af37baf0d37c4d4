package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
	"github.com/tickhubhq/tickhub-backend/internal/services"
)

// SyncEvent is the wire shape published after every finished sync pass.
// Dashboards and the admin UI subscribe to the channel to show live sync
// activity without polling the sync log table.
type SyncEvent struct {
	OrganizationID string               `json:"organization_id"`
	Result         *services.SyncResult `json:"result"`
	Error          string               `json:"error,omitempty"`
	EmittedAt      time.Time            `json:"emitted_at"`
}

type SyncBus interface {
	services.SyncEventPublisher
	StartForwarder(ctx context.Context, onEvent func(ev SyncEvent)) error
	Close() error
}

type syncBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewSyncBus connects using REDIS_ADDR and publishes on REDIS_CHANNEL
// (default "sync-events"). The bus is optional; callers treat a nil bus as
// "events disabled".
func NewSyncBus(log *logger.Logger) (SyncBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "sync-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &syncBus{
		log:     log.With("service", "RedisSyncBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

// PublishSyncResult is best effort; a publish failure is logged and
// swallowed so a flaky redis never fails a sync pass.
func (b *syncBus) PublishSyncResult(ctx context.Context, organizationID uuid.UUID, result *services.SyncResult, passErr error) {
	if b == nil || b.rdb == nil {
		return
	}
	ev := SyncEvent{
		OrganizationID: organizationID.String(),
		Result:         result,
		EmittedAt:      time.Now().UTC(),
	}
	if passErr != nil {
		ev.Error = passErr.Error()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("failed to encode sync event", "error", err)
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.log.Warn("failed to publish sync event", "organization_id", organizationID.String(), "error", err)
	}
}

// StartForwarder subscribes and forwards decoded events until ctx is
// cancelled. Runs its receive loop on a goroutine and returns once the
// subscription is established.
func (b *syncBus) StartForwarder(ctx context.Context, onEvent func(ev SyncEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis sync bus not initialized")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer func() { _ = sub.Close() }()
		chn := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-chn:
				if !ok {
					return
				}
				var ev SyncEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warn("dropping malformed sync event", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *syncBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
