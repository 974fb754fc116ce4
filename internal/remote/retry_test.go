package remote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"shuttle/internal/services"
)

type fakeClient struct {
	Client
	reconnects   int
	reconnectErr error
}

func (f *fakeClient) Reconnect(ctx context.Context) error {
	f.reconnects++
	return f.reconnectErr
}

func transientErr(msg string) error {
	return fmt.Errorf("%w: %s", services.ErrTransient, msg)
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	client := &fakeClient{}
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{Retries: 2}, client, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
	if client.reconnects != 0 {
		t.Fatalf("expected no reconnects, got %d", client.reconnects)
	}
}

func TestWithRetryBoundsAttemptsAndReconnects(t *testing.T) {
	client := &fakeClient{}
	opErr := transientErr("broken pipe")
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{Retries: 2}, client, func() error {
		calls++
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("expected the last attempt error, got %v", err)
	}
	// retries=2 means 3 attempts total, with a reconnect before each retry.
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if client.reconnects != 2 {
		t.Fatalf("expected 2 reconnects, got %d", client.reconnects)
	}
}

func TestWithRetryRecoversAfterReconnect(t *testing.T) {
	client := &fakeClient{}
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{Retries: 3}, client, func() error {
		calls++
		if calls < 3 {
			return transientErr("connection lost")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if client.reconnects != 2 {
		t.Fatalf("expected 2 reconnects, got %d", client.reconnects)
	}
}

func TestWithRetryStopsOnNonTransientError(t *testing.T) {
	client := &fakeClient{}
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{Retries: 2}, client, func() error {
		calls++
		return os.ErrPermission
	})
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected the permission error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("a non-connection failure must not be retried, got %d attempts", calls)
	}
	if client.reconnects != 0 {
		t.Fatalf("expected no reconnects, got %d", client.reconnects)
	}
}

func TestWithRetryStopsOnLocalIOError(t *testing.T) {
	client := &fakeClient{}
	opErr := services.Wrap(services.ErrLocalIO, "sftp", "download", "create local file", os.ErrPermission)
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{Retries: 3}, client, func() error {
		calls++
		return opErr
	})
	if !errors.Is(err, services.ErrLocalIO) {
		t.Fatalf("expected the local io error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("local io failures must not be retried, got %d attempts", calls)
	}
	if client.reconnects != 0 {
		t.Fatalf("expected no reconnects, got %d", client.reconnects)
	}
}

func TestWithRetryReconnectFailureCountsAsAttempt(t *testing.T) {
	reconnectErr := transientErr("dial failed")
	client := &fakeClient{reconnectErr: reconnectErr}
	calls := 0
	err := WithRetry(context.Background(), RetryPolicy{Retries: 2}, client, func() error {
		calls++
		return transientErr("first failure")
	})
	if !errors.Is(err, reconnectErr) {
		t.Fatalf("expected reconnect error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("op should only run once when reconnects keep failing, got %d calls", calls)
	}
}

func TestWithRetryHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &fakeClient{}
	calls := 0
	err := WithRetry(ctx, RetryPolicy{Retries: 5}, client, func() error {
		calls++
		cancel()
		return transientErr("fails")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt before cancel stopped retries, got %d", calls)
	}
}
