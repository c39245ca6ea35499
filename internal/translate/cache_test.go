package translate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type countingTranslator struct {
	out   string
	calls int
}

func (c *countingTranslator) Translate(_ context.Context, _, _ string) (string, error) {
	c.calls++
	return c.out, nil
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("Hello", "id")
	if !strings.HasPrefix(a, "wabot:tr:id:") {
		t.Errorf("key = %q", a)
	}
	if a == cacheKey("Hello", "en") || a == cacheKey("hello", "id") {
		t.Error("keys must differ by target and text")
	}
}

// With Redis unreachable the cache must degrade to the wrapped translator.
func TestCacheBypassesUnavailableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	next := &countingTranslator{out: "Halo"}
	c := NewCache(next, rdb, time.Minute, zap.NewNop())

	out, err := c.Translate(context.Background(), "Hello", "id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Halo" || next.calls != 1 {
		t.Errorf("out=%q calls=%d", out, next.calls)
	}
}
