package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256 of "hello", hex-encoded.
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := Sum([]byte("hello")); got != want {
		t.Errorf("Sum = %q, want %q", got, want)
	}
}

func TestSum_DistinguishesContent(t *testing.T) {
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs produced the same checksum")
	}
	if Sum(nil) != Sum([]byte("")) {
		t.Error("nil and empty input should hash identically")
	}
}
