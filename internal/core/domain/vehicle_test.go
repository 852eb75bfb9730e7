package domain

import (
	"sort"
	"testing"
)

func TestCommandAllowed(t *testing.T) {
	for _, name := range Commands() {
		if !CommandAllowed(name) {
			t.Errorf("CommandAllowed(%q) = false, want true", name)
		}
	}

	for _, name := range []string{"", "self_destruct", "door_lock ", "DOOR_LOCK", "remote_start_drive"} {
		if CommandAllowed(name) {
			t.Errorf("CommandAllowed(%q) = true, want false", name)
		}
	}
}

func TestCommandsCoversDispatchSurface(t *testing.T) {
	if len(Commands()) != 6 {
		t.Errorf("expected 6 dispatchable commands, got %d", len(Commands()))
	}
	if !sort.StringsAreSorted(Commands()) {
		t.Error("expected Commands() in sorted order")
	}
}
