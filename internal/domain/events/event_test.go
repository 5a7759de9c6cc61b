package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID string `json:"id"`
}

func TestChangeEventRoundTrip(t *testing.T) {
	evt, err := NewChangeEvent(TableProducts, KindUpdate, &row{ID: "new"}, &row{ID: "old"})
	require.NoError(t, err)
	assert.False(t, evt.CommitTime.IsZero())

	change, err := Decode[row](evt)
	require.NoError(t, err)
	assert.Equal(t, KindUpdate, change.Kind)
	assert.Equal(t, "new", change.New.ID)
	assert.Equal(t, "old", change.Old.ID)
}

func TestDecodeDeleteHasNoNewRow(t *testing.T) {
	evt, err := NewChangeEvent[row](TableProducts, KindDelete, nil, &row{ID: "gone"})
	require.NoError(t, err)
	assert.Empty(t, evt.New)

	change, err := Decode[row](evt)
	require.NoError(t, err)
	assert.Nil(t, change.New)
	assert.Equal(t, "gone", change.Old.ID)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode[row](ChangeEvent{Table: TableContent, New: []byte("{")})
	assert.Error(t, err)
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable("website_settings")
	require.NoError(t, err)
	assert.Equal(t, TableSettings, table)

	_, err = ParseTable("users")
	assert.Error(t, err)
}
