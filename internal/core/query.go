package core

// GetLatestInterval returns the most recent interval in the database: the
// open interval if one exists, otherwise the closed interval with the
// greatest start. The returned interval's ID reflects its position in the
// full newest-first numbering (§3).
func GetLatestInterval(db *Database) (Interval, bool, error) {
	all, err := db.GetAllIntervals()
	if err != nil {
		return Interval{}, false, err
	}
	if len(all) == 0 {
		return Interval{}, false, nil
	}
	return all[len(all)-1], true, nil
}

// GetTracked returns the intervals matching filter (all of them when
// filter is nil), in chronological order with IDs numbered newest-first.
// Every Datafile is scanned whatever the filter's range; IsEndless() is
// not consulted.
func GetTracked(db *Database, rules RuleView, filter Filter) ([]Interval, error) {
	all, err := db.GetAllIntervals()
	if err != nil {
		return nil, err
	}
	var out []Interval
	for _, iv := range all {
		if filter == nil || filter.Matches(iv) {
			out = append(out, iv)
		}
	}
	return out, nil
}

// GetAllExclusions returns the exclusions intersecting [range.Start,
// range.End) using the configured exclusion provider.
func GetAllExclusions(provider ExclusionProvider, rng Interval) ([]Interval, error) {
	if provider == nil {
		return nil, nil
	}
	return provider.Exclusions(rng.Start, rng.End)
}
