package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDBRequiresURL(t *testing.T) {
	db, err := NewDB(context.Background(), "", time.Second)
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestNilHandlesAreSafe(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())

	var r *Redis
	assert.False(t, r.Healthy(context.Background()))
	assert.NoError(t, r.Close())
}

func TestRedisUnreachableIsUnhealthy(t *testing.T) {
	r := NewRedis("127.0.0.1:1")
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	assert.False(t, r.Healthy(ctx))
}
