package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", config.MaxAttempts)
	}
	if config.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", config.InitialBackoff)
	}
	if config.MaxBackoff != 30*time.Second {
		t.Errorf("MaxBackoff = %v, want 30s", config.MaxBackoff)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryConfigForErrorClass(t *testing.T) {
	tests := []struct {
		name            string
		errorClass      ErrorClass
		expectedInitial time.Duration
		expectedMax     time.Duration
	}{
		{name: "server error config", errorClass: ErrorClassServer, expectedInitial: 1 * time.Second, expectedMax: 10 * time.Second},
		{name: "rate limit config", errorClass: ErrorClassRateLimit, expectedInitial: 5 * time.Second, expectedMax: 60 * time.Second},
		{name: "network error config", errorClass: ErrorClassNetwork, expectedInitial: 2 * time.Second, expectedMax: 30 * time.Second},
		{name: "unknown error class uses default", errorClass: "", expectedInitial: 1 * time.Second, expectedMax: 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := RetryConfigForErrorClass(tt.errorClass)
			if config.InitialBackoff != tt.expectedInitial {
				t.Errorf("InitialBackoff = %v, want %v", config.InitialBackoff, tt.expectedInitial)
			}
			if config.MaxBackoff != tt.expectedMax {
				t.Errorf("MaxBackoff = %v, want %v", config.MaxBackoff, tt.expectedMax)
			}
			if config.MaxAttempts != 3 {
				t.Errorf("MaxAttempts = %d, want 3", config.MaxAttempts)
			}
		})
	}
}

// fastPolicy keeps the per-class attempt counts with millisecond backoffs.
func fastPolicy(errorClass ErrorClass) RetryConfig {
	config := RetryConfigForErrorClass(errorClass)
	config.InitialBackoff = time.Millisecond
	config.MaxBackoff = 5 * time.Millisecond
	return config
}

func TestRetryWithBackoff_SuccessFirstAttempt(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastPolicy, func() (ErrorClass, error) {
		attempts++
		return "", nil
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastPolicy, func() (ErrorClass, error) {
		attempts++
		if attempts < 3 {
			return ErrorClassServer, errors.New("503")
		}
		return "", nil
	})

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_NoRetryForNonRetryableClasses(t *testing.T) {
	for _, class := range []ErrorClass{ErrorClassClient, ErrorClassGraphQL} {
		t.Run(string(class), func(t *testing.T) {
			attempts := 0
			want := errors.New("bad query")
			err := retryWithBackoff(context.Background(), fastPolicy, func() (ErrorClass, error) {
				attempts++
				return class, want
			})

			if !errors.Is(err, want) {
				t.Errorf("err = %v, want %v", err, want)
			}
			if attempts != 1 {
				t.Errorf("attempts = %d, want 1", attempts)
			}
		})
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	attempts := 0
	cause := errors.New("connection refused")
	err := retryWithBackoff(context.Background(), fastPolicy, func() (ErrorClass, error) {
		attempts++
		return ErrorClassNetwork, cause
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("err = %v, want ErrRetryExhausted", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, should wrap the last error", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slowPolicy := func(ErrorClass) RetryConfig {
		return RetryConfig{MaxAttempts: 5, InitialBackoff: time.Minute, MaxBackoff: time.Minute, BackoffMultiplier: 2}
	}

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, slowPolicy, func() (ErrorClass, error) {
			attempts++
			return ErrorClassServer, errors.New("502")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrContextCancelled) {
			t.Errorf("err = %v, want ErrContextCancelled", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, should wrap context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not stop after cancellation")
	}

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
