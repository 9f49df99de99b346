package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "mirror:"
	channelPrefix = "mirror:events:"

	probeInterval = 15 * time.Second
)

// RedisMirror keeps a JSON copy of the dataset in Redis and fans out change
// notifications over pub/sub, one channel per path.
type RedisMirror struct {
	client      *redis.Client
	logger      *zap.Logger
	callTimeout time.Duration

	online atomic.Bool

	mu        sync.Mutex
	listeners map[string]*listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type listener struct {
	sub       *redis.PubSub
	callbacks []Callback
	cancel    context.CancelFunc
}

// NewRedis builds a mirror on top of an already connected Redis client and
// starts the connectivity probe.
func NewRedis(client *redis.Client, callTimeout time.Duration, logger *zap.Logger) *RedisMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &RedisMirror{
		client:      client,
		logger:      logger,
		callTimeout: callTimeout,
		listeners:   make(map[string]*listener),
		ctx:         ctx,
		cancel:      cancel,
	}
	m.online.Store(true)

	m.wg.Add(1)
	go m.probe()

	return m
}

func (m *RedisMirror) Set(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return m.write(ctx, path, raw)
}

func (m *RedisMirror) Push(ctx context.Context, path string, value interface{}) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, path+"/"+id, value); err != nil {
		return "", err
	}
	return id, nil
}

func (m *RedisMirror) Update(ctx context.Context, path string, partial map[string]interface{}) error {
	existing, err := m.Get(ctx, path)
	if err != nil {
		return err
	}

	merged := make(map[string]interface{})
	if existing != nil {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}
	for k, v := range partial {
		merged[k] = v
	}

	return m.Set(ctx, path, merged)
}

func (m *RedisMirror) Get(ctx context.Context, path string) ([]byte, error) {
	if !m.online.Load() {
		return nil, ErrOffline
	}

	ctx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	raw, err := m.client.Get(ctx, keyPrefix+path).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		m.markOffline(err)
		return nil, err
	}
	return raw, nil
}

func (m *RedisMirror) Delete(ctx context.Context, path string) error {
	if !m.online.Load() {
		return ErrOffline
	}

	ctx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	if err := m.client.Del(ctx, keyPrefix+path).Err(); err != nil {
		m.markOffline(err)
		return err
	}
	m.publish(ctx, path, nil)
	return nil
}

// Listen subscribes to change events for path. Callbacks run on the
// subscription goroutine, one at a time.
func (m *RedisMirror) Listen(path string, cb Callback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.listeners[path]; ok {
		l.callbacks = append(l.callbacks, cb)
		return nil
	}

	sub := m.client.Subscribe(m.ctx, channelPrefix+path)
	if _, err := sub.Receive(m.ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	l := &listener{sub: sub, callbacks: []Callback{cb}, cancel: cancel}
	m.listeners[path] = l

	m.wg.Add(1)
	go m.consume(ctx, path, l)

	return nil
}

func (m *RedisMirror) Unlisten(path string) {
	m.mu.Lock()
	l, ok := m.listeners[path]
	if ok {
		delete(m.listeners, path)
	}
	m.mu.Unlock()

	if ok {
		l.cancel()
		_ = l.sub.Close()
	}
}

func (m *RedisMirror) Online() bool {
	return m.online.Load()
}

// Close stops the probe and every listener. The Redis client itself is owned
// by the caller.
func (m *RedisMirror) Close() error {
	m.cancel()

	m.mu.Lock()
	for path, l := range m.listeners {
		_ = l.sub.Close()
		delete(m.listeners, path)
	}
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}

func (m *RedisMirror) write(ctx context.Context, path string, raw []byte) error {
	if !m.online.Load() {
		return ErrOffline
	}

	ctx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()

	if err := m.client.Set(ctx, keyPrefix+path, raw, 0).Err(); err != nil {
		m.markOffline(err)
		return err
	}
	m.publish(ctx, path, raw)
	return nil
}

// markOffline flips the mirror offline after a failed call so subsequent
// operations fail fast with ErrOffline instead of each waiting out a
// timeout. The probe brings it back once Redis answers again.
func (m *RedisMirror) markOffline(err error) {
	if m.online.Swap(false) {
		m.logger.Warn("mirror went offline", zap.Error(err))
	}
}

// publish is best effort, a lost event only delays convergence until the next
// read-through.
func (m *RedisMirror) publish(ctx context.Context, path string, raw []byte) {
	payload := "null"
	if raw != nil {
		payload = string(raw)
	}
	if err := m.client.Publish(ctx, channelPrefix+path, payload).Err(); err != nil {
		m.logger.Warn("mirror publish failed", zap.String("path", path), zap.Error(err))
	}
}

func (m *RedisMirror) consume(ctx context.Context, path string, l *listener) {
	defer m.wg.Done()

	ch := l.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var raw []byte
			if msg.Payload != "null" {
				raw = []byte(msg.Payload)
			}

			m.mu.Lock()
			callbacks := make([]Callback, len(l.callbacks))
			copy(callbacks, l.callbacks)
			m.mu.Unlock()

			for _, cb := range callbacks {
				cb(path, raw)
			}
		}
	}
}

func (m *RedisMirror) probe() {
	defer m.wg.Done()

	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(m.ctx, m.callTimeout)
			err := m.client.Ping(ctx).Err()
			cancel()

			was := m.online.Swap(err == nil)
			if was && err != nil {
				m.logger.Warn("mirror went offline", zap.Error(err))
			} else if !was && err == nil {
				m.logger.Info("mirror back online")
			}
		}
	}
}
