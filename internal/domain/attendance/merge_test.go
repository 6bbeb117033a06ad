package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"team_attendance_bot/internal/domain/athlete"
)

func TestSortRoster(t *testing.T) {
	roster := []athlete.Athlete{
		{Fincode: 3, Name: "carla"},
		{Fincode: 1, Name: "Bo"},
		{Fincode: 2, Name: "ann"},
		{Fincode: 4, Name: "Ann"},
	}

	SortRoster(roster)

	var order []int64
	for _, a := range roster {
		order = append(order, a.Fincode)
	}
	assert.Equal(t, []int64{2, 4, 1, 3}, order)
}

func TestMerge(t *testing.T) {
	roster := []athlete.Athlete{
		{Fincode: 1, Name: "Ann"},
		{Fincode: 2, Name: "Bo"},
		{Fincode: 3, Name: "Carla"},
		{Fincode: 4, Name: "Dan"},
	}

	t.Run("matching records carry their status, the rest are not set", func(t *testing.T) {
		records := []Record{
			{SessionID: 10, Fincode: 1, Status: StatusPresent},
			{SessionID: 10, Fincode: 3, Status: StatusAbsent},
		}

		entries, orphaned := Merge(roster, records)
		require.Len(t, entries, len(roster))
		assert.Empty(t, orphaned)

		set := 0
		for i, e := range entries {
			assert.Equal(t, roster[i].Fincode, e.Fincode, "order is preserved")
			if e.Status.IsSet() {
				set++
			}
		}
		assert.Equal(t, 2, set)
		assert.Equal(t, StatusPresent, entries[0].Status)
		assert.Equal(t, StatusNotSet, entries[1].Status)
		assert.Equal(t, StatusAbsent, entries[2].Status)
		assert.Equal(t, StatusNotSet, entries[3].Status)
	})

	t.Run("records outside the roster are ignored", func(t *testing.T) {
		records := []Record{
			{SessionID: 10, Fincode: 2, Status: StatusJustified},
			{SessionID: 10, Fincode: 99, Status: StatusPresent},
		}

		entries, orphaned := Merge(roster, records)
		require.Len(t, entries, len(roster))
		for _, e := range entries {
			assert.NotEqual(t, int64(99), e.Fincode)
		}
		assert.Equal(t, StatusJustified, entries[1].Status)
		require.Len(t, orphaned, 1)
		assert.Equal(t, int64(99), orphaned[0].Fincode)
	})

	t.Run("no records", func(t *testing.T) {
		entries, orphaned := Merge(roster, nil)
		require.Len(t, entries, len(roster))
		assert.Nil(t, orphaned)
		for _, e := range entries {
			assert.Equal(t, StatusNotSet, e.Status)
		}
	})

	t.Run("duplicate fincode in roster keeps the first", func(t *testing.T) {
		dup := []athlete.Athlete{{Fincode: 1, Name: "Ann"}, {Fincode: 1, Name: "Ann B"}}
		entries, _ := Merge(dup, nil)
		require.Len(t, entries, 1)
		assert.Equal(t, "Ann", entries[0].Name)
	})
}
