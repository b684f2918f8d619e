package core

import "testing"

func TestAllInRangeUnbounded(t *testing.T) {
	f := AllInRange{}
	if !f.IsEndless() {
		t.Fatalf("expected empty range to be endless")
	}
	i := New(mustISO(t, "2023-01-01T09:00:00Z"), mustISO(t, "2023-01-01T10:00:00Z"), nil, "")
	if !f.Matches(i) {
		t.Fatalf("expected unbounded filter to match everything")
	}
}

func TestAllInRangeBounded(t *testing.T) {
	f := AllInRange{Start: mustISO(t, "2023-01-01T09:00:00Z"), End: mustISO(t, "2023-01-01T10:00:00Z")}
	if f.IsEndless() {
		t.Fatalf("bounded range should not be endless")
	}
	inside := New(mustISO(t, "2023-01-01T09:15:00Z"), mustISO(t, "2023-01-01T09:45:00Z"), nil, "")
	outside := New(mustISO(t, "2023-01-02T09:00:00Z"), mustISO(t, "2023-01-02T10:00:00Z"), nil, "")
	if !f.Matches(inside) {
		t.Fatalf("expected inside interval to match")
	}
	if f.Matches(outside) {
		t.Fatalf("expected outside interval not to match")
	}
}

func TestAllWithTags(t *testing.T) {
	f := AllWithTags{Tags: []string{"work", "urgent"}}
	match := New(0, 0, []string{"work", "urgent", "extra"}, "")
	noMatch := New(0, 0, []string{"work"}, "")
	if !f.Matches(match) {
		t.Fatalf("expected superset tag match")
	}
	if f.Matches(noMatch) {
		t.Fatalf("expected missing tag to fail match")
	}
	if !(AllWithTags{}).Matches(noMatch) {
		t.Fatalf("expected empty tag filter to match everything")
	}
}

func TestAllWithIds(t *testing.T) {
	f := AllWithIds{Ids: []int{1, 3}}
	a := Interval{ID: 1}
	b := Interval{ID: 2}
	if !f.Matches(a) {
		t.Fatalf("expected id 1 to match")
	}
	if f.Matches(b) {
		t.Fatalf("expected id 2 not to match")
	}
}

func TestAndGroup(t *testing.T) {
	g := AndGroup{Children: []Filter{
		AllWithTags{Tags: []string{"work"}},
		AllInRange{Start: mustISO(t, "2023-01-01T00:00:00Z"), End: mustISO(t, "2023-01-02T00:00:00Z")},
	}}
	if g.IsEndless() {
		t.Fatalf("expected AndGroup with a bounded child to not be endless")
	}
	i := New(mustISO(t, "2023-01-01T09:00:00Z"), mustISO(t, "2023-01-01T10:00:00Z"), []string{"work"}, "")
	if !g.Matches(i) {
		t.Fatalf("expected both children to match")
	}
}
