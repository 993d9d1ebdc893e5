package registry

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestQueue_DrainKeepsInsertionOrder(t *testing.T) {
	q := NewQueue[int, string]()
	q.Put(3, "c")
	q.Put(1, "a")
	q.Put(2, "b")
	q.Put(3, "c2")

	got := q.Drain()

	testutil.AssertEqual(t, "len", len(got), 3)
	testutil.AssertEqual(t, "first", got[0], "c2")
	testutil.AssertEqual(t, "second", got[1], "a")
	testutil.AssertEqual(t, "third", got[2], "b")
	testutil.AssertEqual(t, "empty after drain", q.Len(), 0)
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue[int, string]()
	q.Put(1, "a")
	q.Put(2, "b")

	v, ok := q.Remove(1)
	testutil.AssertEqual(t, "removed", ok, true)
	testutil.AssertEqual(t, "value", v, "a")

	_, ok = q.Remove(1)
	testutil.AssertEqual(t, "removed twice", ok, false)

	got := q.Drain()
	testutil.AssertEqual(t, "remaining", len(got), 1)
	testutil.AssertEqual(t, "remaining value", got[0], "b")
}
