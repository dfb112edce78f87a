package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDo(t *testing.T) {
	r := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}

	// Succeeds on first attempt
	calls := 0
	err := r.Do("ok", func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Succeeds after transient failures
	calls = 0
	err = r.Do("flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	// Exhausts attempts and wraps the last error
	calls = 0
	sentinel := errors.New("down")
	err = r.Do("broken", func() error {
		calls++
		return sentinel
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, sentinel)
}

func TestGetSplitPart(t *testing.T) {
	part, err := GetSplitPart("https://x.com/prop/123", "/", 4)
	assert.NoError(t, err)
	assert.Equal(t, "123", part)

	_, err = GetSplitPart("a/b", "/", 5)
	assert.Error(t, err)
}
