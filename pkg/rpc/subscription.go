package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"

	"github.com/LiskHQ/sdk-core/pkg/log"
)

const (
	subscribeRequestID  = 1
	unsubscribeID       = 2
	subscriptionBuffer  = 16
	closeWriteTimeout   = time.Second
	handshakeTimeout    = 10 * time.Second
	methodSlotSubscribe = "slotSubscribe"
	methodSlotUnsub     = "slotUnsubscribe"
	methodSlotNotify    = "slotNotification"
)

// SubscriptionClient opens websocket subscriptions.
type SubscriptionClient struct {
	logger log.Logger
	url    string
	dialer *websocket.Dialer
}

// NewSubscriptionClient creates a client of the websocket endpoint at url.
func NewSubscriptionClient(logger log.Logger, url string) *SubscriptionClient {
	return &SubscriptionClient{
		logger: logger,
		url:    url,
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// SlotNotifications subscribes to slot updates.
// Every call opens a new subscription. A subscription which ended is never restarted.
func (c *SubscriptionClient) SlotNotifications(ctx context.Context) (*Subscription[SlotNotification], error) {
	return subscribe(ctx, c, subscriptionMethods{
		subscribe:    methodSlotSubscribe,
		unsubscribe:  methodSlotUnsub,
		notification: methodSlotNotify,
	}, DecodeSlotNotification)
}

type subscriptionMethods struct {
	subscribe    string
	unsubscribe  string
	notification string
}

// Subscription is a lazily consumed sequence of notifications.
type Subscription[T any] struct {
	logger  log.Logger
	conn    *websocket.Conn
	id      uint64
	methods subscriptionMethods
	decode  func([]byte) (T, error)

	items     chan T
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

func subscribe[T any](ctx context.Context, c *SubscriptionClient, methods subscriptionMethods, decode func([]byte) (T, error)) (*Subscription[T], error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.url, err)
	}
	id, err := requestSubscription(ctx, conn, methods.subscribe)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.logger.Debugf("Subscribed to %s with id %d", methods.subscribe, id)
	sub := &Subscription[T]{
		logger:  c.logger.With("subscription", id),
		conn:    conn,
		id:      id,
		methods: methods,
		decode:  decode,
		items:   make(chan T, subscriptionBuffer),
		done:    make(chan struct{}),
	}
	go sub.read()
	return sub, nil
}

func requestSubscription(ctx context.Context, conn *websocket.Conn, method string) (uint64, error) {
	req, err := newRequest(subscribeRequestID, method, nil)
	if err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return 0, err
		}
		defer conn.SetReadDeadline(time.Time{})
	}
	if err := conn.WriteJSON(req); err != nil {
		return 0, fmt.Errorf("sending %s: %w", method, err)
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return 0, fmt.Errorf("waiting for %s response: %w", method, err)
		}
		resp := &JSONRPCResponse{}
		if err := json.Unmarshal(msg, resp); err != nil {
			return 0, fmt.Errorf("invalid %s response: %w", method, err)
		}
		if resp.ID == nil || *resp.ID != subscribeRequestID {
			continue
		}
		id := uint64(0)
		if err := resp.decodeResult(&id); err != nil {
			return 0, fmt.Errorf("%s: %w", method, err)
		}
		return id, nil
	}
}

func (s *Subscription[T]) read() {
	defer close(s.items)
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		notification := &JSONRPCNotification{}
		if err := json.Unmarshal(msg, notification); err != nil {
			s.fail(fmt.Errorf("invalid notification: %w", err))
			return
		}
		if notification.Method != s.methods.notification || notification.Params.Subscription != s.id {
			s.logger.Debugf("Ignoring message for method %s", notification.Method)
			continue
		}
		item, err := s.decode(notification.Params.Result)
		if err != nil {
			s.fail(err)
			return
		}
		select {
		case s.items <- item:
		case <-s.done:
			s.fail(nil)
			return
		}
	}
}

func (s *Subscription[T]) fail(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	select {
	case <-s.done:
		s.err = ErrSubscriptionClosed
		return
	default:
	}
	if cause == nil {
		s.err = ErrSubscriptionClosed
		return
	}
	s.logger.Errorf("Subscription ended with %v", cause)
	s.err = fmt.Errorf("%w: %s", ErrSubscriptionClosed, cause.Error())
}

// Err returns the reason the subscription ended, or nil while it is active.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Next blocks until the next notification arrives.
// It fails with ErrSubscriptionClosed once the subscription is closed or has failed.
func (s *Subscription[T]) Next(ctx context.Context) (T, error) {
	var empty T
	select {
	case <-s.done:
		return empty, ErrSubscriptionClosed
	default:
	}
	select {
	case item, ok := <-s.items:
		if !ok {
			if err := s.Err(); err != nil {
				return empty, err
			}
			return empty, ErrSubscriptionClosed
		}
		return item, nil
	case <-s.done:
		return empty, ErrSubscriptionClosed
	case <-ctx.Done():
		return empty, ctx.Err()
	}
}

// Close unsubscribes and closes the connection. It is safe to call more than once.
func (s *Subscription[T]) Close() error {
	var err error
	s.closeOnce.Do(func() {
		ended := s.Err() != nil
		close(s.done)
		if ended {
			err = s.conn.Close()
			return
		}
		req, reqErr := newRequest(unsubscribeID, s.methods.unsubscribe, []uint64{s.id})
		if reqErr != nil {
			err = reqErr
		} else {
			deadline := time.Now().Add(closeWriteTimeout)
			err = multierr.Append(err, s.conn.SetWriteDeadline(deadline))
			if writeErr := s.conn.WriteJSON(req); writeErr != nil && !errors.Is(writeErr, websocket.ErrCloseSent) {
				err = multierr.Append(err, writeErr)
			}
		}
		err = multierr.Append(err, s.conn.Close())
	})
	return err
}
