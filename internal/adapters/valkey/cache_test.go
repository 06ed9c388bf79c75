package valkey

import (
	"context"
	"errors"
	"testing"
)

func TestNilCacheReturnsUnavailable(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get on nil cache: expected ErrUnavailable, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 60); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Set on nil cache: expected ErrUnavailable, got %v", err)
	}
	if err := c.Delete(ctx, "k"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Delete on nil cache: expected ErrUnavailable, got %v", err)
	}
	c.Close()
}

func TestZeroValueCacheReturnsUnavailable(t *testing.T) {
	c := &Cache{}

	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
