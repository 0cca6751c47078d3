package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	m := NoopMergeHooks{}
	m.OnDecode(ctx, 10, 0)
	m.OnMalformedLine(ctx, 3)
	m.OnMergeComplete(ctx, MergeStats{External: 1}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "file")
	c.OnCacheMiss(ctx, "redis")
	c.OnCacheSet(ctx, "memory", 1024)

	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "POST", "/v1/merge", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Merge().(NoopMergeHooks); !ok {
		t.Error("Merge() should return NoopMergeHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customMerge := &testMergeHooks{}
	SetMergeHooks(customMerge)
	if Merge() != customMerge {
		t.Error("SetMergeHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Merge().(NoopMergeHooks); !ok {
		t.Error("Reset() should restore NoopMergeHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testMergeHooks{}
	SetMergeHooks(custom)
	SetMergeHooks(nil)

	if Merge() != custom {
		t.Error("SetMergeHooks(nil) should be ignored")
	}
}

type testMergeHooks struct{ NoopMergeHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
