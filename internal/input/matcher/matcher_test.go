package matcher

import (
	"testing"

	"github.com/samber/mo"

	"github.com/dshills/modal/internal/dispatcher/execctx"
	"github.com/dshills/modal/internal/input/catalog"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
)

func noop(*execctx.Context) error { return nil }

func cmd(name string, when catalog.Predicate, keys ...string) *catalog.Action {
	return &catalog.Action{
		Name:    name,
		Kind:    catalog.Command,
		Modes:   []mode.Mode{mode.Normal, mode.OperatorPending},
		Keys:    keys,
		When:    when,
		Command: noop,
	}
}

func newTestMatcher() *Matcher {
	r := catalog.NewRegistry()
	r.MustRegister(
		cmd("count", nil, "1", "2", "3", "4", "5", "6", "7", "8", "9"),
		cmd("countZero", func(v catalog.View) bool { return v.CountInProgress }, "0"),
		cmd("lineStart", func(v catalog.View) bool { return !v.CountInProgress }, "0"),
		cmd("deleteLine", catalog.PendingOperator("d"), "d"),
		cmd("delete", nil, "d"),
		cmd("gotoTop", nil, "gg"),
		cmd("lowercase", nil, "gu"),
		cmd("findChar", nil, "f<character>"),
		cmd("register", nil, `"<register>`),
		cmd("gotoChar", nil, "g<character>"),
		cmd("gotoCharX", nil, "gxx"),
	)
	return New(r, nil)
}

func TestMatch(t *testing.T) {
	m := newTestMatcher()

	tests := []struct {
		name       string
		view       catalog.View
		keys       string
		wantStatus Status
		wantAction string
	}{
		{"single literal", catalog.View{Mode: mode.Normal}, "d", Complete, "delete"},
		{"predicate in registration order", catalog.View{Mode: mode.OperatorPending, Operator: mo.Some("d")}, "d", Complete, "deleteLine"},
		{"prefix waits", catalog.View{Mode: mode.Normal}, "g", Partial, ""},
		{"literal beats placeholder", catalog.View{Mode: mode.Normal}, "gg", Complete, "gotoTop"},
		{"placeholder match", catalog.View{Mode: mode.Normal}, "gq", Complete, "gotoChar"},
		{"longer literal continuation waits", catalog.View{Mode: mode.Normal}, "gx", Partial, ""},
		{"longer continuation completes", catalog.View{Mode: mode.Normal}, "gxx", Complete, "gotoCharX"},
		{"character capture", catalog.View{Mode: mode.Normal}, "fz", Complete, "findChar"},
		{"register capture", catalog.View{Mode: mode.Normal}, `"a`, Complete, "register"},
		{"zero alone moves", catalog.View{Mode: mode.Normal}, "0", Complete, "lineStart"},
		{"zero extends count", catalog.View{Mode: mode.Normal, Count: 1, CountInProgress: true}, "0", Complete, "countZero"},
		{"no match", catalog.View{Mode: mode.Normal}, "Q", NoMatch, ""},
		{"wrong mode", catalog.View{Mode: mode.Insert}, "d", NoMatch, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Match(tt.view, key.MustParseSequence(tt.keys))
			if res.Status != tt.wantStatus {
				t.Fatalf("expected %s, got %s", tt.wantStatus, res.Status)
			}
			if tt.wantAction == "" {
				if res.Action != nil {
					t.Errorf("expected no action, got %s", res.Action.Name)
				}
				return
			}
			if res.Action == nil || res.Action.Name != tt.wantAction {
				t.Errorf("expected %s, got %v", tt.wantAction, res.Action)
			}
			if res.Consumed != len(key.MustParseSequence(tt.keys)) {
				t.Errorf("expected all keys consumed, got %d", res.Consumed)
			}
		})
	}
}

func TestMatch_Captures(t *testing.T) {
	m := newTestMatcher()

	res := m.Match(catalog.View{Mode: mode.Normal}, key.MustParseSequence("f<CR>"))
	if res.Status != Complete {
		t.Fatalf("expected complete, got %s", res.Status)
	}
	if len(res.Captures) != 1 || res.Captures[0] != key.Special(key.KeyEnter) {
		t.Errorf("expected <CR> capture, got %v", res.Captures)
	}
}

func TestMatch_Empty(t *testing.T) {
	m := newTestMatcher()
	if res := m.Match(catalog.View{Mode: mode.Normal}, nil); res.Status != NoMatch {
		t.Errorf("expected no match for empty keys, got %s", res.Status)
	}
}
