package parallel

import (
	"sync/atomic"
	"testing"
)

func TestSplitCoversRange(t *testing.T) {
	for _, tc := range []struct{ n, parts int }{{129, 8}, {5, 8}, {10, 1}, {7, 0}, {33, 33}} {
		spans := Split(tc.n, tc.parts)
		next := 0
		for _, s := range spans {
			if s.Lo != next || s.Len() <= 0 {
				t.Fatalf("Split(%d,%d) produced a gap or empty span at %+v", tc.n, tc.parts, s)
			}
			next = s.Hi
		}
		if next != tc.n {
			t.Fatalf("Split(%d,%d) covered [0,%d)", tc.n, tc.parts, next)
		}
	}
	if Split(0, 4) != nil {
		t.Fatal("empty range should produce no spans")
	}
}

func TestMapJoinsBeforeReturning(t *testing.T) {
	spans := Split(64, 64)
	var running atomic.Int32
	var finished atomic.Int32
	results := Map(4, spans, func(s Span) int {
		if running.Add(1) > 4 {
			t.Errorf("more than 4 concurrent workers")
		}
		sum := 0
		for i := s.Lo; i < s.Hi; i++ {
			sum += i
		}
		running.Add(-1)
		finished.Add(1)
		return sum
	})
	if got := finished.Load(); got != int32(len(spans)) {
		t.Fatalf("Map returned before all spans finished: %d/%d", got, len(spans))
	}
	total := Sum(results, func(acc, v int) int { return acc + v })
	if total != 63*64/2 {
		t.Fatalf("combined sum %d, expected %d", total, 63*64/2)
	}
	for i, s := range spans {
		if results[i] != s.Lo {
			t.Fatalf("result %d not aligned with its span: %d", i, results[i])
		}
	}
}

func TestMapSequentialFallback(t *testing.T) {
	order := []int{}
	Map(1, Split(5, 5), func(s Span) struct{} {
		order = append(order, s.Lo)
		return struct{}{}
	})
	for i, lo := range order {
		if lo != i {
			t.Fatalf("single worker should visit spans in order, got %v", order)
		}
	}
}
