package delay

import "testing"

func TestNewRejectsInvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size 0")
	}

	if _, err := New(-4); err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestWriteRead(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 1; i <= 5; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(1); got != 5 {
		t.Errorf("Read(1) = %g, want 5", got)
	}

	if got := d.Read(3); got != 3 {
		t.Errorf("Read(3) = %g, want 3", got)
	}
}

func TestWrapAround(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 1; i <= 10; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(1); got != 10 {
		t.Errorf("Read(1) = %g, want 10", got)
	}

	if got := d.Read(4); got != 7 {
		t.Errorf("Read(4) = %g, want 7", got)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := 1; i <= 4; i++ {
		if got := d.Read(i); got != 0 {
			t.Errorf("Read(%d) after reset = %g, want 0", i, got)
		}
	}
}
