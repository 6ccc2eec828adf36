package recorder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"reelcam/internal/capture"
	"reelcam/internal/services"
)

// drainEvents collects chunks until the completion signal.
func drainEvents(ctx context.Context, sub *capture.Subscription) ([][]byte, error) {
	var chunks [][]byte
	for {
		select {
		case chunk := <-sub.Data():
			chunks = append(chunks, chunk)
		case <-sub.Done():
			return chunks, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// drainPoll lets a collector goroutine buffer chunks and raise a flag on
// completion, then checks the flag every interval up to the attempt bound.
func (c *Controller) drainPoll(ctx context.Context, sub *capture.Subscription) ([][]byte, error) {
	var (
		mu     sync.Mutex
		chunks [][]byte
		done   atomic.Bool
	)
	go func() {
		for {
			select {
			case chunk := <-sub.Data():
				mu.Lock()
				chunks = append(chunks, chunk)
				mu.Unlock()
			case <-sub.Done():
				done.Store(true)
				return
			case <-sub.Closed():
				return
			}
		}
	}()

	for attempt := 0; attempt < c.attempts; attempt++ {
		if err := c.sleep(ctx, c.interval); err != nil {
			return nil, err
		}
		if done.Load() {
			mu.Lock()
			defer mu.Unlock()
			return chunks, nil
		}
	}
	return nil, services.Wrap(services.ErrDrainTimeout, "recorder", "stop",
		fmt.Sprintf("encoder did not finish after %d checks every %s", c.attempts, c.interval), nil)
}
