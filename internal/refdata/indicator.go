package refdata

// MatchSequenceIDs maps a free-text indicator label to the sequence ids
// that feed it. Levels are scanned in order level1 -> level4; at the first
// level where any account's label matches the normalized query, every
// sequence id sharing that label at that same level is collected — even
// when those accounts differ deeper — and scanning stops. Deeper matches
// are never mixed in. An empty result is a valid outcome, not an error.
func MatchSequenceIDs(accounts []Account, label string) []int64 {
	query := Normalize(label)
	if query == "" {
		return nil
	}
	for level := 0; level < 4; level++ {
		var ids []int64
		seen := make(map[int64]struct{})
		for _, acc := range accounts {
			levels := acc.Levels()
			lv := levels[level]
			if lv == nil || Normalize(*lv) != query {
				continue
			}
			if acc.SequenceID == nil {
				continue
			}
			if _, dup := seen[*acc.SequenceID]; dup {
				continue
			}
			seen[*acc.SequenceID] = struct{}{}
			ids = append(ids, *acc.SequenceID)
		}
		if len(ids) > 0 {
			return ids
		}
		// A level where the name appears only on id-less ancestor rows
		// still wins the scan; nothing deeper may match instead.
		if levelHasMatch(accounts, level, query) {
			return nil
		}
	}
	return nil
}

func levelHasMatch(accounts []Account, level int, query string) bool {
	for _, acc := range accounts {
		lv := acc.Levels()[level]
		if lv != nil && Normalize(*lv) == query {
			return true
		}
	}
	return false
}
