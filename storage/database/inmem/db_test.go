package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoquest/ecoquest/core"
)

func TestDB(t *testing.T) {
	ctx := context.Background()
	db := Open()

	_, err := db.Get(ctx, core.SlotProgress)
	assert.Equal(t, core.ErrSlotNotFound, err)

	val := []byte(`{"ecoPoints":1}`)
	require.NoError(t, db.Set(ctx, core.SlotProgress, val))
	val[0] = 'x' // must not leak into the store

	got, err := db.Get(ctx, core.SlotProgress)
	require.NoError(t, err)
	assert.Equal(t, `{"ecoPoints":1}`, string(got))
	assert.ElementsMatch(t, []string{core.SlotProgress}, db.Keys())

	require.NoError(t, db.Delete(ctx, core.SlotProgress))
	require.NoError(t, db.Delete(ctx, core.SlotProgress), "deleting a missing slot")
	_, err = db.Get(ctx, core.SlotProgress)
	assert.Equal(t, core.ErrSlotNotFound, err)
}
