package command

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-signin/core"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Command is one unit of sign-in work. It is immutable once built by New and
// can be executed exactly once.
type Command struct {
	correlationID string
	messageType   string
	run           func(ctx context.Context) core.Result
	consumed      atomic.Bool
}

// New binds msg to its handler under a fresh correlation id.
func New[T gocmd.Message](msg T, handler gocmd.Commander[T]) *Command {
	cmd := &Command{
		correlationID: uuid.NewString(),
		messageType:   strings.TrimSpace(msg.Type()),
	}
	cmd.run = func(ctx context.Context) core.Result {
		if handler == nil {
			return core.Failure(cmd.correlationID, commandDependencyError("command: handler is required"))
		}
		if validator, ok := any(msg).(interface{ Validate() error }); ok {
			if err := validator.Validate(); err != nil {
				return core.Failure(cmd.correlationID, err)
			}
		}
		if err := gocmd.ValidateMessage(msg); err != nil {
			return core.Failure(cmd.correlationID, err)
		}
		collector := gocmd.NewResult[core.Result]()
		err := handler.Execute(gocmd.ContextWithResult(ctx, collector), msg)
		if result, ok := collector.Load(); ok && result != nil {
			return result
		}
		if err != nil {
			return core.Failure(cmd.correlationID, err)
		}
		return core.Failure(cmd.correlationID, ErrNoResult)
	}
	return cmd
}

func (c *Command) CorrelationID() string {
	if c == nil {
		return ""
	}
	return c.correlationID
}

func (c *Command) Type() string {
	if c == nil {
		return ""
	}
	return c.messageType
}

// Consume marks the command as executed. Only the first call returns true.
func (c *Command) Consume() bool {
	return c != nil && c.consumed.CompareAndSwap(false, true)
}

func (c *Command) execute(ctx context.Context) (result core.Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = core.Failure(c.correlationID, fmt.Errorf("command: %s panicked: %v", c.messageType, recovered))
		}
	}()
	return c.run(core.ContextWithCorrelationID(ctx, c.correlationID))
}

// Dispatcher runs commands on worker goroutines. Submit is the single core
// operation; Execute, ExecuteBlocking and ExecuteWithCallback only change how
// the result is delivered.
type Dispatcher struct {
	slots     *semaphore.Weighted
	telemetry *core.Telemetry
}

// NewDispatcher bounds in-flight commands to maxConcurrent; zero or less means
// unbounded.
func NewDispatcher(telemetry *core.Telemetry, maxConcurrent int) *Dispatcher {
	if telemetry == nil {
		telemetry = core.NewTelemetry(nil, nil)
	}
	dispatcher := &Dispatcher{telemetry: telemetry}
	if maxConcurrent > 0 {
		dispatcher.slots = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return dispatcher
}

// Submit starts cmd and returns a channel that yields its one Result and is
// then closed. The command runs to completion regardless of who is listening.
func (d *Dispatcher) Submit(cmd *Command) <-chan core.Result {
	out := make(chan core.Result, 1)
	go func() {
		defer close(out)
		out <- d.dispatch(cmd)
	}()
	return out
}

// Execute waits for the result without pinning the caller past ctx. When ctx
// ends first the command keeps running and its result is dropped.
func (d *Dispatcher) Execute(ctx context.Context, cmd *Command) (core.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := d.Submit(cmd)
	select {
	case result := <-results:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ExecuteBlocking parks the calling goroutine until the result is ready. It
// must not be called from the goroutine that drives browser navigation.
func (d *Dispatcher) ExecuteBlocking(cmd *Command) core.Result {
	return <-d.Submit(cmd)
}

// ExecuteWithCallback delivers the result on a worker goroutine. Challenge
// results are delivered to onSuccess.
func (d *Dispatcher) ExecuteWithCallback(cmd *Command, onSuccess func(core.Result), onFailure func(core.ErrorResult)) {
	results := d.Submit(cmd)
	go func() {
		result := <-results
		if failure, ok := result.(core.ErrorResult); ok {
			if onFailure != nil {
				onFailure(failure)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(result)
		}
	}()
}

func (d *Dispatcher) dispatch(cmd *Command) core.Result {
	if cmd == nil {
		return core.Failure("", commandDependencyError("command: command is required"))
	}
	ctx := core.ContextWithCorrelationID(context.Background(), cmd.correlationID)
	if !cmd.Consume() {
		result := core.Failure(cmd.correlationID, ErrCommandAlreadyExecuted)
		d.telemetry.Warn(ctx, "command rejected", map[string]any{
			"correlation_id": cmd.correlationID,
			"command":        cmd.messageType,
			"result":         result.Summary(),
		})
		return result
	}

	if d.slots != nil {
		if err := d.slots.Acquire(ctx, 1); err != nil {
			return core.Failure(cmd.correlationID, err)
		}
		defer d.slots.Release(1)
	}

	started := time.Now()
	d.telemetry.Info(ctx, "command entering", map[string]any{
		"correlation_id": cmd.correlationID,
		"command":        cmd.messageType,
	})
	result := cmd.execute(ctx)
	elapsed := time.Since(started)

	fields := map[string]any{
		"correlation_id": cmd.correlationID,
		"command":        cmd.messageType,
		"result":         result.Summary(),
		"duration_ms":    elapsed.Milliseconds(),
	}
	if result.Kind() == core.ResultKindError {
		d.telemetry.Warn(ctx, "command result", fields)
	} else {
		d.telemetry.Info(ctx, "command result", fields)
	}

	metric := commandMetricName(cmd.messageType)
	tags := map[string]string{"result": string(result.Kind())}
	d.telemetry.Count(ctx, metric+".total", tags)
	d.telemetry.Observe(ctx, metric+".duration_ms", float64(elapsed.Milliseconds()), tags)
	return result
}

func commandMetricName(messageType string) string {
	name := core.NormalizeMetricSegment(strings.TrimPrefix(messageType, core.MetricCommandPrefix))
	if name == "" {
		name = "unknown"
	}
	return core.MetricCommandPrefix + name
}
