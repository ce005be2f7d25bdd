package utils

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

func TestRedemptionMarker(t *testing.T) {
	jti := uuid.NewString()
	assert.False(t, IsRedeemed(jti))

	MarkRedeemed(jti, time.Now().Add(time.Hour))
	assert.True(t, IsRedeemed(jti))
}

func TestRedemptionMarkerIgnoresExpired(t *testing.T) {
	jti := uuid.NewString()
	// Marking past expiry is a no-op, the token is already dead.
	MarkRedeemed(jti, time.Now().Add(-time.Minute))
	assert.False(t, IsRedeemed(jti))
}

func TestRedemptionMarkerEmptyID(t *testing.T) {
	MarkRedeemed("", time.Now().Add(time.Hour))
	assert.False(t, IsRedeemed(""))
}
