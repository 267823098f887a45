// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(retries int) RetryConfig {
	return RetryConfig{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError("ocr process killed", nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	calls := 0
	sentinel := errors.New("unreadable image")
	err := RetryWithBackoff(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("tesseract failed: %w", sentinel)
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), fastConfig(2), func(ctx context.Context) error {
		calls++
		return NewTransientError("always fails", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	cfg := fastConfig(10)
	cfg.OnRetry = func(attempt int, err error) { cancel() }

	err := RetryWithBackoff(ctx, cfg, func(ctx context.Context) error {
		calls++
		return NewTransientError("fail", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_OnRetryCallback(t *testing.T) {
	var attempts []int
	cfg := fastConfig(2)
	cfg.OnRetry = func(attempt int, err error) {
		attempts = append(attempts, attempt)
		assert.Error(t, err)
	}

	_ = RetryWithBackoff(context.Background(), cfg, func(ctx context.Context) error {
		return NewTransientError("fail", nil)
	})
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestRetryWithBackoff_DelayGrows(t *testing.T) {
	var delays []time.Duration
	last := time.Now()
	cfg := RetryConfig{
		MaxRetries:      3,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		OnRetry: func(attempt int, err error) {
			now := time.Now()
			delays = append(delays, now.Sub(last))
			last = now
		},
	}

	_ = RetryWithBackoff(context.Background(), cfg, func(ctx context.Context) error {
		return NewTransientError("fail", nil)
	})
	require.Len(t, delays, 3)
	assert.GreaterOrEqual(t, delays[0], 10*time.Millisecond)
	assert.GreaterOrEqual(t, delays[2], 40*time.Millisecond)
}

func TestRetryWithResult(t *testing.T) {
	calls := 0
	text, err := RetryWithResult(context.Background(), fastConfig(2), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError("busy", nil)
		}
		return "Sodium 140", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Sodium 140", text)
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Positive(t, cfg.MaxRetries)
	assert.Greater(t, cfg.Multiplier, 1.0)
	assert.Positive(t, cfg.InitialInterval)
	assert.GreaterOrEqual(t, cfg.MaxInterval, cfg.InitialInterval)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"cancelled", fmt.Errorf("ocr: %w", context.Canceled), ErrorTypeCancelled, false},
		{"deadline", context.DeadlineExceeded, ErrorTypeTimeout, true},
		{"fork failed", fmt.Errorf("fork/exec tesseract: %w", syscall.EAGAIN), ErrorTypeTransient, true},
		{"too many files", fmt.Errorf("open: %w", syscall.EMFILE), ErrorTypeTransient, true},
		{"plain", errors.New("unsupported image"), ErrorTypePermanent, false},
		{"already classified", fmt.Errorf("wrapped: %w", NewTransientError("x", nil)), ErrorTypeTransient, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifyError(tt.err)
			require.NotNil(t, c)
			assert.Equal(t, tt.wantType, c.Type)
			assert.Equal(t, tt.retryable, c.IsRetryable())
		})
	}

	assert.Nil(t, ClassifyError(nil))
}

func TestClassifyError_ExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	err := exec.Command("sh", "-c", "exit 2").Run()
	require.Error(t, err)
	assert.False(t, IsRetryable(err), "a normal non-zero exit is permanent")

	err = exec.Command("sh", "-c", "kill -9 $$").Run()
	require.Error(t, err)
	assert.True(t, IsRetryable(err), "a process killed by a signal is retried")
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(NewTransientError("temp", nil)))
	assert.False(t, IsRetryable(NewPermanentError("perm", nil)))
}
