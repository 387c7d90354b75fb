// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mvail/scrollforge/internal/engine"
	"github.com/mvail/scrollforge/internal/logging"
)

type fakeServer struct {
	started  chan struct{}
	release  chan struct{}
	shutdown chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		started:  make(chan struct{}),
		release:  make(chan struct{}),
		shutdown: make(chan struct{}),
	}
}

func (f *fakeServer) ListenAndServe() error {
	close(f.started)
	<-f.release
	return errors.New("http: Server closed")
}

func (f *fakeServer) Shutdown(context.Context) error {
	close(f.shutdown)
	close(f.release)
	return nil
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	server := newFakeServer()
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-server.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}

	select {
	case <-server.shutdown:
	default:
		t.Error("Shutdown was never called")
	}
}

func TestHTTPServiceStartupFailure(t *testing.T) {
	svc := NewHTTPService(&failingServer{}, time.Second)
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("failed listen returned nil")
	}
}

type failingServer struct{}

func (failingServer) ListenAndServe() error          { return errors.New("bind: address in use") }
func (failingServer) Shutdown(context.Context) error { return nil }

func TestEvictorServiceEvicts(t *testing.T) {
	manager, err := engine.NewManager(engine.DefaultConfig(), zerolog.Nop(), engine.NopSink{})
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if _, err := manager.Create("stale", engine.PriorAggregates{}, past); err != nil {
		t.Fatal(err)
	}

	svc := NewEvictorService(manager, 30*time.Minute, 20*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go svc.Serve(ctx)

	deadline := time.Now().Add(time.Second)
	for manager.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("stale session not evicted, len = %d", manager.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFuncService(t *testing.T) {
	ran := make(chan struct{})
	svc := NewFuncService("loop", func(ctx context.Context) error {
		close(ran)
		<-ctx.Done()
		return ctx.Err()
	})
	if got := svc.String(); got != "loop" {
		t.Errorf("String() = %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	<-ran
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v", err)
	}
}

func TestTreeServeAndStop(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(zerolog.Nop()), DefaultTreeConfig())

	ran := make(chan struct{})
	tree.AddStorageService(NewFuncService("heartbeat", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("supervised service never ran")
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
}
