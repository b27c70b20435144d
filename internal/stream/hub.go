package stream

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "recording:"
	channelSuffix  = ":broadcast"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Hub fans out live recording snapshots to WebSocket watchers keyed by
// recorder. With Redis configured every message goes through pub/sub so all
// instances deliver it; otherwise delivery is local.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	cancel  context.CancelFunc
}

type Client struct {
	Key  string
	Send chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		clients: map[string]map[*Client]struct{}{},
	}
	if redisClient == nil {
		return h
	}

	ctx, cancel := context.WithCancel(context.Background())
	pubsub := redisClient.PSubscribe(ctx, channelPattern)

	confirmCtx, confirmCancel := context.WithTimeout(ctx, 2*time.Second)
	defer confirmCancel()
	if _, err := pubsub.Receive(confirmCtx); err != nil {
		slog.Warn("redis subscribe failed, using local fan-out", "error", err)
		_ = pubsub.Close()
		cancel()
		return h
	}

	h.redis = redisClient
	h.cancel = cancel
	go h.forward(ctx, pubsub)
	return h
}

// Close stops the Redis subscription. Registered clients are left to Unregister.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Hub) Register(key string) *Client {
	client := &Client{
		Key:  key,
		Send: make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[key] == nil {
		h.clients[key] = map[*Client]struct{}{}
	}
	h.clients[key][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if keyed, ok := h.clients[client.Key]; ok {
		if _, registered := keyed[client]; !registered {
			return
		}
		delete(keyed, client)
		if len(keyed) == 0 {
			delete(h.clients, client.Key)
		}
		close(client.Send)
	}
}

func (h *Hub) Broadcast(key string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(key), payload).Err()
		if err == nil {
			return
		}
		slog.Error("redis publish failed", "key", key, "error", err)
	}
	h.deliver(key, payload)
}

// deliver drops the message for watchers whose buffer is full.
func (h *Hub) deliver(key string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[key] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) forward(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			key := keyFromChannel(msg.Channel)
			if key == "" {
				continue
			}
			h.deliver(key, []byte(msg.Payload))
		}
	}
}

func redisChannel(key string) string {
	return channelPrefix + key + channelSuffix
}

func keyFromChannel(ch string) string {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
