// Package events sequences debate updates onto per-debate channels and
// fans them out to subscribers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

// Topic is the single topic every debate channel carries.
const Topic = "updates"

// DefaultBacklog is the number of messages kept per channel for replay.
const DefaultBacklog = 512

// ErrChannelClosed is returned when publishing to a finished debate.
var ErrChannelClosed = errors.New("events: channel closed")

// Channel returns the channel name for a debate.
func Channel(debateID string) string { return "debate:" + debateID }

// Message is a sequenced update as delivered to subscribers. Seq starts at
// 1 and increases by one per message on a channel.
type Message struct {
	Seq       uint64            `json:"seq"`
	Channel   string            `json:"channel"`
	Topic     string            `json:"topic"`
	Type      debate.UpdateType `json:"type"`
	Side      debate.Side       `json:"side,omitempty"`
	JudgeType debate.JudgeType  `json:"judgeType,omitempty"`
	Data      json.RawMessage   `json:"data"`
	Timestamp time.Time         `json:"timestamp"`
}

// Handler receives messages. Handlers run on the publisher's goroutine and
// must not block or publish to the channel they are subscribed to.
type Handler func(Message)

type subscription struct {
	id      string
	handler Handler
}

type channelState struct {
	// dispatch serialises delivery so every subscriber sees seq order and
	// a replaying subscriber cannot interleave with a live publish.
	dispatch sync.Mutex

	seq     uint64
	backlog []Message
	subs    []subscription
	closed  bool
	done    chan struct{}
}

// Hub implements debate.Publisher.
type Hub struct {
	mu       sync.Mutex
	channels map[string]*channelState
	backlog  int
	nextID   atomic.Uint64
	logger   *slog.Logger
	now      func() time.Time
}

var _ debate.Publisher = (*Hub)(nil)

// NewHub creates a Hub keeping backlog messages per channel for replay.
func NewHub(backlog int, logger *slog.Logger) *Hub {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		channels: make(map[string]*channelState),
		backlog:  backlog,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Hub) channel(name string) *channelState {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.channels[name]
	if !ok {
		ch = &channelState{done: make(chan struct{})}
		h.channels[name] = ch
	}
	return ch
}

// Publish sequences u onto the debate's channel and delivers it.
func (h *Hub) Publish(ctx context.Context, debateID string, u debate.Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(u.Data)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", u.Type, err)
	}

	name := Channel(debateID)
	ch := h.channel(name)
	ch.dispatch.Lock()
	defer ch.dispatch.Unlock()

	h.mu.Lock()
	if ch.closed {
		h.mu.Unlock()
		return fmt.Errorf("events: publish %s on %s: %w", u.Type, name, ErrChannelClosed)
	}
	ch.seq++
	msg := Message{
		Seq:       ch.seq,
		Channel:   name,
		Topic:     Topic,
		Type:      u.Type,
		Side:      u.Side,
		JudgeType: u.JudgeType,
		Data:      data,
		Timestamp: h.now().UTC(),
	}
	ch.backlog = append(ch.backlog, msg)
	if over := len(ch.backlog) - h.backlog; over > 0 {
		ch.backlog = append([]Message(nil), ch.backlog[over:]...)
	}
	subs := append([]subscription(nil), ch.subs...)
	h.mu.Unlock()

	for _, sub := range subs {
		h.safeCall(sub.handler, msg)
	}
	return nil
}

// Close marks the debate's channel finished. Later publishes fail; the
// backlog stays available for replay.
func (h *Hub) Close(debateID string) {
	ch := h.channel(Channel(debateID))
	ch.dispatch.Lock()
	defer ch.dispatch.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	if !ch.closed {
		ch.closed = true
		close(ch.done)
	}
}

// Done returns a channel closed once the named channel is finished.
func (h *Hub) Done(channel string) <-chan struct{} {
	return h.channel(channel).done
}

// Subscribe registers handler for live messages on channel.
func (h *Hub) Subscribe(channel string, handler Handler) string {
	return h.SubscribeFrom(channel, 0, handler)
}

// SubscribeFrom replays backlog messages with Seq > after to handler and
// then registers it for live messages, with no gap and no duplicate
// between the two.
func (h *Hub) SubscribeFrom(channel string, after uint64, handler Handler) string {
	ch := h.channel(channel)
	ch.dispatch.Lock()
	defer ch.dispatch.Unlock()

	id := strconv.FormatUint(h.nextID.Add(1), 10)
	h.mu.Lock()
	ch.subs = append(ch.subs, subscription{id: id, handler: handler})
	replay := since(ch.backlog, after)
	h.mu.Unlock()

	for _, msg := range replay {
		h.safeCall(handler, msg)
	}
	return id
}

// Unsubscribe removes a subscription by ID. Returns true if it was found.
func (h *Hub) Unsubscribe(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.channels {
		for i, sub := range ch.subs {
			if sub.id == id {
				ch.subs = append(ch.subs[:i:i], ch.subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Replay returns the retained messages with Seq > after.
func (h *Hub) Replay(channel string, after uint64) []Message {
	ch := h.channel(channel)
	h.mu.Lock()
	defer h.mu.Unlock()
	return since(ch.backlog, after)
}

// LastSeq returns the highest sequence number issued on channel.
func (h *Hub) LastSeq(channel string) uint64 {
	ch := h.channel(channel)
	h.mu.Lock()
	defer h.mu.Unlock()
	return ch.seq
}

// SubscriberCount returns the number of live subscriptions on channel.
func (h *Hub) SubscriberCount(channel string) int {
	ch := h.channel(channel)
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(ch.subs)
}

func since(backlog []Message, after uint64) []Message {
	var out []Message
	for _, msg := range backlog {
		if msg.Seq > after {
			out = append(out, msg)
		}
	}
	return out
}

// safeCall invokes a handler and recovers from any panics so one broken
// subscriber cannot stop delivery to the rest.
func (h *Hub) safeCall(handler Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("event handler panicked",
				"channel", msg.Channel, "seq", msg.Seq, "type", msg.Type,
				"panic", r, "stack", string(debug.Stack()))
		}
	}()
	handler(msg)
}
