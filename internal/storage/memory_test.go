package storage

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore[*mockStoreSpec]()

	err := s.Save("a", &mockStoreSpec{Name: "alpha", Value: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "get", s.Get("a").Name, "alpha")

	err = s.Save("b", &mockStoreSpec{Value: -1})
	testutil.AssertErrorContains(t, err, "value")

	testutil.AssertEqual(t, "len", len(s.GetAll()), 1)

	_ = s.Delete("a")
	if s.Get("a") != nil {
		t.Errorf("expected record to be deleted")
	}
}
