package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherReportsResult(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	d := NewDispatcher(runnerFunc(func(_ context.Context, id string) error {
		if id == "bad" {
			return boom
		}
		return nil
	}), DispatcherConfig{}, nil)
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, d.Submit("good").Wait(ctx))
	assert.ErrorIs(t, d.Submit("bad").Wait(ctx), boom)
}

func TestDispatcherSubmitDoesNotBlock(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	d := NewDispatcher(runnerFunc(func(context.Context, string) error {
		<-release
		return nil
	}), DispatcherConfig{Workers: 1}, nil)

	p := d.Submit("i1")
	select {
	case <-p.Done():
		t.Fatal("pending finished before the runner returned")
	default:
	}
	assert.NoError(t, p.Err())

	close(release)
	<-p.Done()
	require.NoError(t, d.Close(context.Background()))
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var running, peak atomic.Int32
	d := NewDispatcher(runnerFunc(func(context.Context, string) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	}), DispatcherConfig{Workers: 2}, nil)

	var pending []*Pending
	for i := 0; i < 8; i++ {
		pending = append(pending, d.Submit("i"))
	}
	for _, p := range pending {
		<-p.Done()
	}
	require.NoError(t, d.Close(context.Background()))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(runnerFunc(func(context.Context, string) error { return nil }), DispatcherConfig{}, nil)
	require.NoError(t, d.Close(context.Background()))

	p := d.Submit("i1")
	<-p.Done()
	assert.ErrorIs(t, p.Err(), ErrDispatcherClosed)
	assert.ErrorIs(t, d.EnqueueEnrich(context.Background(), "i1"), ErrDispatcherClosed)
}

func TestDispatcherCloseCancelsStragglers(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(runnerFunc(func(ctx context.Context, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	}), DispatcherConfig{}, nil)
	p := d.Submit("slow")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	assert.ErrorIs(t, p.Err(), context.Canceled)
}
