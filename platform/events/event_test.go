package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marketplace_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	calls := 0
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		calls++
		return errors.New("first")
	}))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		calls++
		return nil
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatal("expected joined error from failing handler")
	}
	if calls != 2 {
		t.Fatalf("expected both handlers to run, got %d", calls)
	}
}

func TestPublishRunsHandlersAfterRequestContextIsCancelled(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	var wg sync.WaitGroup
	wg.Add(1)
	var handlerCtxErr error
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, _ Event) error {
		defer wg.Done()
		handlerCtxErr = ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{BaseEvent: NewBaseEvent()})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not run")
	}
	if handlerCtxErr != nil {
		t.Fatalf("expected detached context, got %v", handlerCtxErr)
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewInMemoryBus(nil)
	if err := bus.PublishSync(context.Background(), pingEvent{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
