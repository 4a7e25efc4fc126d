// Package redishook observes go-redis clients: connection events and
// optional per-command tracing.
package redishook

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Events reports each dial outcome. Nil callbacks are skipped.
type Events struct {
	OnConnect func(addr string)
	OnError   func(addr string, err error)
}

var _ redis.Hook = Events{}

func (h Events) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			if h.OnError != nil && !errors.Is(err, context.Canceled) {
				h.OnError(addr, err)
			}
			return nil, err
		}
		if h.OnConnect != nil {
			h.OnConnect(addr)
		}
		return conn, nil
	}
}

func (Events) ProcessHook(next redis.ProcessHook) redis.ProcessHook { return next }

func (Events) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// Trace is one executed command. Err excludes redis.Nil (a miss).
type Trace struct {
	Name string
	Args []any
	Took time.Duration
	Err  error
}

// Monitor calls Trace after every command, pipelined ones included.
type Monitor struct {
	Trace func(Trace)
}

var _ redis.Hook = Monitor{}

func (Monitor) DialHook(next redis.DialHook) redis.DialHook { return next }

func (m Monitor) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		m.emit(cmd, time.Since(start))
		return err
	}
}

func (m Monitor) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		took := time.Since(start)
		for _, cmd := range cmds {
			m.emit(cmd, took)
		}
		return err
	}
}

func (m Monitor) emit(cmd redis.Cmder, took time.Duration) {
	if m.Trace == nil {
		return
	}
	err := cmd.Err()
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	var args []any
	if a := cmd.Args(); len(a) > 1 {
		args = a[1:]
	}
	m.Trace(Trace{Name: cmd.FullName(), Args: args, Took: took, Err: err})
}
