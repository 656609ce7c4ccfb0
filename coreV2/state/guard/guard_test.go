package guard

import (
	"errors"
	"testing"
)

func TestGuard(t *testing.T) {
	var g Guard

	call := func(nested func() error) error {
		release, err := g.Acquire()
		if err != nil {
			return err
		}
		defer release()

		if nested != nil {
			return nested()
		}
		return nil
	}

	if err := call(nil); err != nil {
		t.Fatal(err)
	}

	err := call(func() error { return call(nil) })
	if !errors.Is(err, ErrorLocked) {
		t.Fatalf("want %v, got %v", ErrorLocked, err)
	}
	if g.Locked() {
		t.Fatal("guard must be released after a failed call")
	}

	if err := call(func() error { return errors.New("boom") }); err == nil {
		t.Fatal("expected error")
	}
	if g.Locked() {
		t.Fatal("guard must be released on error path")
	}
}
