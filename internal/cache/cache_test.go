package cache

import "testing"

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(100)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestSetGetDel(t *testing.T) {
	c := newTestCache(t)

	c.Set("users", "user:1", "alice")
	c.Wait()

	v, ok := c.Get("user:1")
	if !ok || v.(string) != "alice" {
		t.Fatalf("Get(user:1) = %v, %v; want alice, true", v, ok)
	}

	c.Del("user:1")
	if _, ok := c.Get("user:1"); ok {
		t.Error("Get(user:1) after Del found a value")
	}
}

func TestClearGroup(t *testing.T) {
	c := newTestCache(t)

	c.Set("users", "user:1", 1)
	c.Set("users", "user:2", 2)
	c.Set("other", "other:1", 3)
	c.Wait()

	c.ClearGroup("users")

	for _, k := range []string{"user:1", "user:2"} {
		if _, ok := c.Get(k); ok {
			t.Errorf("Get(%s) after ClearGroup found a value", k)
		}
	}
	if _, ok := c.Get("other:1"); !ok {
		t.Error("ClearGroup(users) removed a key from another group")
	}
}
