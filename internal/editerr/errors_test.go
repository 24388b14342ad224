package editerr

import (
	"fmt"
	"testing"
)

func TestUserError_Wrapped(t *testing.T) {
	err := fmt.Errorf("select register: %w", InvalidRegister('!'))
	if !IsUserError(err) {
		t.Fatal("expected wrapped UserError to be detected")
	}
	if got := InvalidRegister('!').Error(); got != "E354: Invalid register name: '!'" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestFaultf_Panics(t *testing.T) {
	defer func() {
		r := recover()
		f, ok := AsFault(r)
		if !ok {
			t.Fatalf("expected Fault, got %v", r)
		}
		if f.Message != "bad mode 42" {
			t.Errorf("expected %q, got %q", "bad mode 42", f.Message)
		}
	}()
	Faultf("bad mode %d", 42)
}

func TestAsFault_NotFault(t *testing.T) {
	if _, ok := AsFault("boom"); ok {
		t.Error("string panic value should not be a Fault")
	}
	if _, ok := AsFault(NewWarning("setCursors", "empty")); ok {
		t.Error("Warning should not be a Fault")
	}
}
