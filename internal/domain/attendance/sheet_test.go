package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSheet_Tap(t *testing.T) {
	sheet := &Sheet{Entries: []RosterEntry{entry(1, "Ann", StatusAbsent)}}

	_, ok := sheet.Tap(2)
	assert.False(t, ok, "unknown fincode")
	assert.False(t, sheet.Dirty)

	status, ok := sheet.Tap(1)
	assert.True(t, ok)
	assert.Equal(t, StatusNotSet, status)
	assert.True(t, sheet.Dirty)
}

func TestTally(t *testing.T) {
	counts := Tally([]RosterEntry{
		entry(1, "a", StatusPresent),
		entry(2, "b", StatusPresent),
		entry(3, "c", StatusJustified),
		entry(4, "d", StatusAbsent),
		entry(5, "e", StatusNotSet),
		entry(6, "f", ""),
	})
	assert.Equal(t, Counts{Present: 2, Justified: 1, Absent: 1, NotSet: 2}, counts)
	assert.Equal(t, "P:2 J:1 A:1 N:2", counts.String())
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 75.0, Percentage(3, 4))
}
