package vfs

import "testing"

func TestName_Equal(t *testing.T) {
	a := NewName("Foo", CaseSensitive)
	b := NewName("Foo", CaseSensitive)
	c := NewName("foo", CaseSensitive)

	if !a.Equal(b) {
		t.Fatal("expected equal names to compare equal")
	}
	if a.Equal(c) {
		t.Fatal("expected case-sensitive names to differ")
	}
}

func TestName_CaseInsensitive(t *testing.T) {
	a := NewName("Foo", CaseInsensitiveASCII)
	c := NewName("foo", CaseInsensitiveASCII)

	if !a.Equal(c) {
		t.Fatal("expected case-insensitive names to compare equal")
	}
	if a.String() != "Foo" {
		t.Fatal("expected display form to be preserved, got", a.String())
	}
}

func TestName_DotEntries(t *testing.T) {
	self := NewName(".", CaseSensitive)
	parent := NewName("..", CaseSensitive)
	ordinary := NewName("a", CaseSensitive)

	if !self.IsSelf() || !self.IsDotEntry() {
		t.Fatal("expected . to be a self dot entry")
	}
	if !parent.IsParent() || !parent.IsDotEntry() {
		t.Fatal("expected .. to be a parent dot entry")
	}
	if ordinary.IsDotEntry() {
		t.Fatal("expected ordinary name not to be a dot entry")
	}
	if self.Equal(ordinary) {
		t.Fatal("dot entries must never equal an ordinary name")
	}
}
