package engine

import (
	"testing"
	"time"
)

func TestRingBufferAdd(t *testing.T) {
	rb := NewRingBuffer[Sample](5)
	for i := 0; i < 3; i++ {
		rb.Add(Sample{At: time.Now(), CPU: float64(i)})
	}
	if rb.Len() != 3 {
		t.Errorf("expected len 3, got %d", rb.Len())
	}
}

func TestRingBufferWrap(t *testing.T) {
	rb := NewRingBuffer[Sample](3)
	for i := 0; i < 5; i++ {
		rb.Add(Sample{CPU: float64(i)})
	}
	if rb.Len() != 3 {
		t.Errorf("expected len 3, got %d", rb.Len())
	}
	items := rb.All()
	if items[0].CPU != 2 {
		t.Errorf("expected oldest CPU=2, got %f", items[0].CPU)
	}
	if items[2].CPU != 4 {
		t.Errorf("expected newest CPU=4, got %f", items[2].CPU)
	}
}

func TestRingBufferPartialOrder(t *testing.T) {
	rb := NewRingBuffer[int](4)
	rb.Add(1)
	rb.Add(2)
	items := rb.All()
	if len(items) != 2 || items[0] != 1 || items[1] != 2 {
		t.Errorf("expected [1 2], got %v", items)
	}
}

func TestRingBufferEmpty(t *testing.T) {
	rb := NewRingBuffer[Sample](10)
	if rb.Len() != 0 {
		t.Error("new ring buffer should be empty")
	}
	if len(rb.All()) != 0 {
		t.Error("All() on empty buffer should return empty slice")
	}
	if _, ok := rb.Last(); ok {
		t.Error("Last() on empty buffer should return false")
	}
}

func TestRingBufferLast(t *testing.T) {
	rb := NewRingBuffer[Sample](5)
	rb.Add(Sample{CPU: 1})
	rb.Add(Sample{CPU: 2})
	rb.Add(Sample{CPU: 3})
	last, ok := rb.Last()
	if !ok {
		t.Fatal("Last() should return true for non-empty buffer")
	}
	if last.CPU != 3 {
		t.Errorf("expected CPU=3, got %f", last.CPU)
	}
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	rb := NewRingBuffer[int](0)
	rb.Add(7)
	rb.Add(8)
	if rb.Cap() != 1 || rb.Len() != 1 {
		t.Fatalf("expected cap 1 len 1, got cap %d len %d", rb.Cap(), rb.Len())
	}
	if last, _ := rb.Last(); last != 8 {
		t.Errorf("expected 8, got %d", last)
	}
}
