package handle

import "testing"

func TestPackUnpack_RoundTrip(t *testing.T) {
	cases := []struct {
		container ContainerIndex
		local     LocalID
	}{
		{0, 0},
		{0, 1},
		{1, 0},
		{3, 12345},
		{7, (1 << ContainerShift) - 1},
	}

	for _, c := range cases {
		p := Pack(c.container, c.local)
		gotC, gotL := Unpack(p)
		if gotC != c.container || gotL != c.local {
			t.Fatalf("Pack(%d, %d) -> Unpack gave (%d, %d)", c.container, c.local, gotC, gotL)
		}
	}
}

func TestPack_Layout(t *testing.T) {
	p := Pack(2, 5)
	want := Packed(2<<ContainerShift | 5)
	if p != want {
		t.Fatalf("Expected %d, got %d", want, p)
	}
}

func TestIsNull(t *testing.T) {
	if !IsNull(NullLocal) {
		t.Fatal("NullLocal must be null")
	}
	if !IsNull(-7) {
		t.Fatal("Any negative local is null")
	}
	if IsNull(0) {
		t.Fatal("Local 0 is a valid entity")
	}

	if !NullPacked.IsNull() {
		t.Fatal("NullPacked must be null")
	}
	if Pack(1, 0).IsNull() {
		t.Fatal("Packed (1, 0) is a valid entity")
	}

	if !NullSimple.IsNull() {
		t.Fatal("NullSimple must be null")
	}
	if (Simple{Manager: 2, Local: 0}).IsNull() {
		t.Fatal("Simple (2, 0) is a valid entity")
	}
}

func TestPacked_Accessors(t *testing.T) {
	p := Pack(4, 99)
	if p.Container() != 4 {
		t.Fatalf("Expected container 4, got %d", p.Container())
	}
	if p.Local() != 99 {
		t.Fatalf("Expected local 99, got %d", p.Local())
	}
}
