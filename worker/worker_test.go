package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSubmitRunsJobAndReturnsResult(t *testing.T) {
	e := Start()
	defer e.Stop()

	h := e.Submit(func(ctx context.Context) (any, error) {
		return 42, nil
	})

	result, err := h.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if result.(int) != 42 {
		t.Errorf("result = %v, want 42", result)
	}
}

func TestSubmitPropagatesJobError(t *testing.T) {
	e := Start()
	defer e.Stop()

	wantErr := errors.New("boom")
	h := e.Submit(func(ctx context.Context) (any, error) {
		return nil, wantErr
	})

	_, err := h.Wait(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Wait() error = %v, want %v", err, wantErr)
	}
}

func TestJobsRunInSubmissionOrder(t *testing.T) {
	e := Start()
	defer e.Stop()

	var order []int
	done := make(chan struct{})

	var handles []Handle
	for i := 0; i < 5; i++ {
		i := i
		handles = append(handles, e.Submit(func(ctx context.Context) (any, error) {
			order = append(order, i)
			if i == 4 {
				close(done)
			}
			return i, nil
		}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs to complete")
	}

	for i, h := range handles {
		if _, err := h.Wait(context.Background()); err != nil {
			t.Fatalf("Wait(%d): %v", i, err)
		}
	}

	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d, want %d; jobs did not run in submission order", i, v, i)
		}
	}
}

func TestDoneReportsCompletionWithoutBlocking(t *testing.T) {
	e := Start()
	defer e.Stop()

	release := make(chan struct{})
	h := e.Submit(func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	})

	if h.Done() {
		t.Errorf("Done() = true before the job has run")
	}
	close(release)

	if _, err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !h.Done() {
		t.Errorf("Done() = false after Wait returned")
	}
}

func TestWaitRespectsCallerContext(t *testing.T) {
	e := Start()
	defer e.Stop()

	block := make(chan struct{})
	defer close(block)
	e.Submit(func(ctx context.Context) (any, error) {
		<-block
		return nil, nil
	})

	h := e.Submit(func(ctx context.Context) (any, error) {
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded (job still queued behind a blocked one)", err)
	}
}
