package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_WaitConsumesAvailableTokenImmediately(t *testing.T) {
	b := newTokenBucket(5, 100)
	b.wait()
	assert.Equal(t, float64(4), b.tokens, "expected one token consumed from a full bucket")
}

func TestTokenBucket_RefillCapsAtCapacity(t *testing.T) {
	b := newTokenBucket(2, 1000)
	b.tokens = 0
	b.refill()
	assert.LessOrEqual(t, b.tokens, b.capacity)
}
