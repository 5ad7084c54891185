package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminality(t *testing.T) {
	terminal := []Status{StatusDone, StatusErrorUpload, StatusErrorEdit, StatusErrorDelete, StatusUnauthorized}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s must be terminal", s)
	}
	for _, s := range []Status{StatusNew, StatusPending, StatusIdle} {
		assert.False(t, s.Terminal(), "%s must not be terminal", s)
		assert.False(t, s.Failed(), "%s must not be failed", s)
	}
	assert.False(t, StatusDone.Failed(), "done is success, not failure")
	for _, s := range []Status{StatusErrorUpload, StatusErrorEdit, StatusErrorDelete, StatusUnauthorized} {
		assert.True(t, s.Failed(), "%s must be a failure", s)
	}
}
