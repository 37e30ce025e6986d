package surfacecache

import (
	"context"
	"testing"
	"time"
)

func TestGetMissOnUnreachableRedisReturnsFalse(t *testing.T) {
	// No server listens on this address; Get must degrade to a cache miss
	// rather than propagating a connection error to the caller.
	c := New("127.0.0.1:1", time.Minute)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, ok := c.Get(ctx, Key{Underlying: "SPY", Forward: 100, Strike: 100, T: 1, IsCall: true, Price: 5})
	if ok {
		t.Errorf("Get against an unreachable redis returned ok=true")
	}
}

func TestKeyRedisKeyIsStableForIdenticalFields(t *testing.T) {
	k1 := Key{Underlying: "SPY", Forward: 100.123456, Strike: 95, T: 0.5, IsCall: false, Price: 3.14159}
	k2 := k1
	if k1.redisKey() != k2.redisKey() {
		t.Errorf("identical keys produced different redis keys")
	}

	k3 := k1
	k3.Price = 3.14160
	if k1.redisKey() == k3.redisKey() {
		t.Errorf("distinct prices collapsed to the same redis key")
	}
}
