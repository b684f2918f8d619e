package core

// Filter is a composable predicate over intervals. Rather than the
// original's runtime-polymorphic, shared-ownership filter objects (see
// spec.md §9's REDESIGN FLAG), this is a small closed set of value types
// implementing one interface — no heap sharing required.
type Filter interface {
	Matches(i Interval) bool
	IsEndless() bool
}

// AllInRange matches intervals intersecting [Start, End). An empty range
// ({0, 0}) is treated as unbounded (IsEndless() == true).
type AllInRange struct {
	Start, End Instant
}

func (f AllInRange) Matches(i Interval) bool {
	if f.Start == 0 && f.End == 0 {
		return true
	}
	return i.Intersects(Interval{Start: f.Start, End: f.End})
}

func (f AllInRange) IsEndless() bool { return f.Start == 0 && f.End == 0 }

// AllWithTags matches intervals whose tag set is a superset of Tags. An
// empty Tags list matches everything.
type AllWithTags struct {
	Tags []string
}

func (f AllWithTags) Matches(i Interval) bool {
	for _, t := range f.Tags {
		if !i.HasTag(t) {
			return false
		}
	}
	return true
}

func (f AllWithTags) IsEndless() bool { return true }

// AllWithIds matches intervals whose assigned ID is in Ids.
type AllWithIds struct {
	Ids []int
}

func (f AllWithIds) Matches(i Interval) bool {
	for _, id := range f.Ids {
		if id == i.ID {
			return true
		}
	}
	return false
}

func (f AllWithIds) IsEndless() bool { return true }

// AndGroup is the logical AND of its children. It is endless iff every
// child is endless.
type AndGroup struct {
	Children []Filter
}

func (f AndGroup) Matches(i Interval) bool {
	for _, c := range f.Children {
		if !c.Matches(i) {
			return false
		}
	}
	return true
}

func (f AndGroup) IsEndless() bool {
	for _, c := range f.Children {
		if !c.IsEndless() {
			return false
		}
	}
	return true
}
