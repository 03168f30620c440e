package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathCollapsesConsecutiveDuplicates(t *testing.T) {
	acc := acct(i64p(1), "A", "A", "B")
	assert.Equal(t, []string{"A", "B"}, acc.Path())
}

func TestPathCollapseIsCaseAndWhitespaceInsensitive(t *testing.T) {
	acc := acct(i64p(1), "TÀI SẢN", "  tài sản ", "Tài sản ngắn hạn")
	assert.Equal(t, []string{"TÀI SẢN", "Tài sản ngắn hạn"}, acc.Path())
}

func TestPathSkipsEmptyLevels(t *testing.T) {
	acc := Account{Level1: strp("A"), Level3: strp("B"), Level4: strp(" ")}
	assert.Equal(t, []string{"A", "B"}, acc.Path())
}

func TestRawDepthCountsBeforeCollapse(t *testing.T) {
	assert.Equal(t, 3, acct(nil, "A", "A", "B").RawDepth())
	assert.Equal(t, 2, acct(nil, "A", "B").RawDepth())
}

func TestLabelIsDeepestNonEmptyLevel(t *testing.T) {
	assert.Equal(t, "Tiền", acct(nil, "TÀI SẢN", "Tiền").Label())
	assert.Equal(t, "TÀI SẢN", acct(nil, "TÀI SẢN", " ").Label())
	assert.Equal(t, "", Account{}.Label())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "TIỀN VÀ CÁC KHOẢN TƯƠNG ĐƯƠNG TIỀN",
		Normalize("  tiền Và CÁC khoản TƯƠNG đương  tiền "))
	// Decomposed diacritics compare equal to composed ones.
	assert.Equal(t, Normalize("Tiền"), Normalize("Tiền"))
}

func TestExpandUnitSelection(t *testing.T) {
	groups := []UnitGroup{
		{ID: "g1", Name: "Công ty Mẹ", Entities: []UnitEntity{{ID: "e1"}, {ID: "e2"}}},
		{ID: "g2", Name: "Đơn vị thành viên", Entities: []UnitEntity{{ID: "e3"}}},
	}
	assert.Equal(t, []string{"e3", "e1", "e2"}, ExpandUnitSelection(groups, []string{"g2", "g1"}))
	assert.Nil(t, ExpandUnitSelection(groups, []string{"missing"}))
}

func TestDefaultUnitSelection(t *testing.T) {
	groups := []UnitGroup{
		{ID: "g1", Name: "Đơn vị thành viên"},
		{ID: "g2", Name: "Công ty Mẹ"},
	}
	assert.Equal(t, []string{"g2"}, DefaultUnitSelection(groups, "Công ty Mẹ"))
	assert.Equal(t, []string{"g1"}, DefaultUnitSelection(groups, "Không có"))
	assert.Nil(t, DefaultUnitSelection(nil, "Công ty Mẹ"))
}
