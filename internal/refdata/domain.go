package refdata

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/finsight-vn/finsight/internal/period"
)

// Account is one reportable line item of a statement. Exactly one of the
// four level labels is the account's own name (the deepest non-empty one);
// the shallower levels are its ancestry. SequenceID joins the account to
// its facts and is nil for labels that exist only as aggregation ancestors.
type Account struct {
	Statement  period.Statement
	SequenceID *int64
	Level1     *string
	Level2     *string
	Level3     *string
	Level4     *string
}

// Levels returns the raw level labels in order.
func (a Account) Levels() []*string {
	return []*string{a.Level1, a.Level2, a.Level3, a.Level4}
}

// Label returns the account's own display label: the deepest non-empty
// level.
func (a Account) Label() string {
	levels := a.Levels()
	for i := len(levels) - 1; i >= 0; i-- {
		if levels[i] != nil && strings.TrimSpace(*levels[i]) != "" {
			return *levels[i]
		}
	}
	return ""
}

// RawDepth counts the non-empty levels before duplicate collapsing. It is
// the tie-break key when two accounts normalize to the same path.
func (a Account) RawDepth() int {
	depth := 0
	for _, lv := range a.Levels() {
		if lv != nil && strings.TrimSpace(*lv) != "" {
			depth++
		}
	}
	return depth
}

// Path returns the account's ancestry chain with consecutive duplicate
// labels collapsed: a level that merely repeats its parent (after
// normalization) is dropped, not treated as a new node. The returned
// labels are raw, suitable for display; callers normalize them for
// comparison.
func (a Account) Path() []string {
	var path []string
	for _, lv := range a.Levels() {
		if lv == nil || strings.TrimSpace(*lv) == "" {
			continue
		}
		if len(path) > 0 && Normalize(path[len(path)-1]) == Normalize(*lv) {
			continue
		}
		path = append(path, *lv)
	}
	return path
}

// Normalize canonicalizes a label for comparison: NFC so composed and
// decomposed Vietnamese diacritics compare equal, trimmed, internal
// whitespace collapsed, uppercased.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// UnitEntity is a leaf reporting entity.
type UnitEntity struct {
	ID   string
	Name string
}

// UnitGroup is the mid-level grouping users select; fact queries always
// expand a group down to its leaf entities.
type UnitGroup struct {
	ID       string
	Name     string
	Entities []UnitEntity
}

// ExpandUnitSelection resolves selected group ids to the union of their
// leaf entity ids, preserving group order. Unknown ids are ignored.
func ExpandUnitSelection(groups []UnitGroup, selected []string) []string {
	byID := make(map[string]UnitGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	var out []string
	for _, id := range selected {
		g, ok := byID[id]
		if !ok {
			continue
		}
		for _, e := range g.Entities {
			out = append(out, e.ID)
		}
	}
	return out
}

// DefaultUnitSelection picks the group matching the preferred name, falling
// back to the first group. Empty when no groups are loaded.
func DefaultUnitSelection(groups []UnitGroup, preferredName string) []string {
	for _, g := range groups {
		if g.Name == preferredName {
			return []string{g.ID}
		}
	}
	if len(groups) > 0 {
		return []string{groups[0].ID}
	}
	return nil
}
