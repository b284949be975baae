package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := FieldMissing("enemy-spawner", "target")

	msg := err.Error()
	if !strings.Contains(msg, "[validate]") {
		t.Fatalf("Expected phase in message, got %q", msg)
	}
	if !strings.Contains(msg, "field_missing") {
		t.Fatalf("Expected kind in message, got %q", msg)
	}
	if !strings.Contains(msg, "target") {
		t.Fatalf("Expected field path in message, got %q", msg)
	}
	if !strings.Contains(msg, "enemy-spawner") {
		t.Fatalf("Expected kind name in message, got %q", msg)
	}
}

func TestError_Is(t *testing.T) {
	err := UnregisteredKind(PhaseRegister, "ghost")

	if !stderrors.Is(err, &Error{Phase: PhaseRegister, Kind: KindUnregisteredKind}) {
		t.Fatal("Expected Is to match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseValidate, Kind: KindUnregisteredKind}) {
		t.Fatal("Is should not match on a different phase")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("out of pages")
	err := AllocationFailed(4096, cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("Expected Unwrap chain to reach cause")
	}
	if !strings.Contains(err.Error(), "4096") {
		t.Fatalf("Expected size in message, got %q", err.Error())
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseClone, KindCrossContainer).
		Entity("rotator").
		Path("skin").
		Detail("container %d vs %d", 1, 2).
		Build()

	msg := err.Error()
	if !strings.Contains(msg, "at skin") {
		t.Fatalf("Expected path in message, got %q", msg)
	}
	if !strings.Contains(msg, "container 1 vs 2") {
		t.Fatalf("Expected formatted detail, got %q", msg)
	}
}

func TestConstruction_Cause(t *testing.T) {
	cause := stderrors.New("nil map write")
	err := Construction("spinner", "start", cause)

	if err.Kind != KindConstruction {
		t.Fatalf("Expected construction kind, got %s", err.Kind)
	}
	if !strings.Contains(err.Error(), "start failed") {
		t.Fatalf("Expected hook name in message, got %q", err.Error())
	}
	if stderrors.Unwrap(err) != cause {
		t.Fatal("Expected cause to unwrap")
	}
}
