package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLayoutHooks{}
	l.OnLayoutStart(ctx, "layered", 12)
	l.OnLayoutComplete(ctx, "layered", time.Millisecond, nil)
	l.OnLayoutFallback(ctx, "tree", "multiple roots")

	NoopRouteHooks{}.OnRoute(ctx, 300, true, time.Millisecond)
	NoopConditionHooks{}.OnConditionError(ctx, `{"xor":[]}`, errors.New("unknown operator"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "layout", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/layout/layered")
	h.OnResponse(ctx, "POST", "/v1/layout/layered", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Route().(NoopRouteHooks); !ok {
		t.Error("Route() should return NoopRouteHooks by default")
	}
	if _, ok := Condition().(NoopConditionHooks); !ok {
		t.Error("Condition() should return NoopConditionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCondition := &testConditionHooks{}
	SetConditionHooks(customCondition)
	if Condition() != customCondition {
		t.Error("SetConditionHooks should set custom hooks")
	}

	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testLayoutHooks{}
	SetLayoutHooks(custom)
	SetLayoutHooks(nil)
	if Layout() != custom {
		t.Error("SetLayoutHooks(nil) should not replace registered hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testLayoutHooks{}
	SetLayoutHooks(h)
	ctx := context.Background()
	Layout().OnLayoutStart(ctx, "grid", 3)
	Layout().OnLayoutFallback(ctx, "tree", "not a tree")

	if h.starts != 1 || h.fallbacks != 1 {
		t.Errorf("starts=%d fallbacks=%d, want 1 and 1", h.starts, h.fallbacks)
	}
}

type testLayoutHooks struct {
	NoopLayoutHooks
	starts, fallbacks int
}

func (h *testLayoutHooks) OnLayoutStart(context.Context, string, int) { h.starts++ }
func (h *testLayoutHooks) OnLayoutFallback(context.Context, string, string) {
	h.fallbacks++
}

type testConditionHooks struct {
	NoopConditionHooks
}
