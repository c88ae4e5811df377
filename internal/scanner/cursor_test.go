package scanner

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poagov/internal/model"
)

func TestInitialBlock(t *testing.T) {
	cases := []struct {
		name string
		mode model.StartMode
		tip  uint64
		want uint64
	}{
		{"earliest", model.Earliest(), 1000, 0},
		{"latest", model.Latest(), 1000, 1001},
		{"start", model.StartBlock(5), 1000, 5},
		{"start at tip", model.StartBlock(1000), 1000, 1000},
		{"tail zero", model.Tail(0), 1000, 1001},
		{"tail", model.Tail(10), 1000, 991},
		{"tail whole chain", model.Tail(1001), 1000, 0},
		{"tail beyond genesis", model.Tail(5000), 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := InitialBlock(tc.mode, tc.tip)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := InitialBlock(model.StartBlock(1001), 1000)
	assert.ErrorIs(t, err, ErrStartBeyondTip)

	_, err = InitialBlock(model.StartMode{}, 1000)
	assert.Error(t, err)
}

func TestCursorRangesAreContiguous(t *testing.T) {
	c := NewCursor(100, 0)
	tips := []uint64{99, 100, 100, 105, 105, 120, 121}

	var got []BlockRange
	for _, tip := range tips {
		r, ok := c.Next(tip)
		if !ok {
			continue
		}
		if err := c.Commit(r); err != nil {
			t.Fatalf("commit %s: %v", r, err)
		}
		got = append(got, r)
	}

	want := []BlockRange{
		{From: 100, To: 100},
		{From: 101, To: 105},
		{From: 106, To: 120},
		{From: 121, To: 121},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}

	last, ok := c.LastCommitted()
	if !ok || last != 121 {
		t.Fatalf("last committed mismatch: %d %v", last, ok)
	}
}

func TestCursorUncommittedRangeRepeats(t *testing.T) {
	c := NewCursor(0, 0)

	first, ok := c.Next(10)
	require.True(t, ok)
	second, ok := c.Next(12)
	require.True(t, ok)
	assert.Equal(t, first.From, second.From)
	assert.Equal(t, uint64(12), second.To)

	_, ok = c.LastCommitted()
	assert.False(t, ok)
}

func TestCursorMaxRange(t *testing.T) {
	c := NewCursor(0, 4)

	var got []BlockRange
	for {
		r, ok := c.Next(10)
		if !ok {
			break
		}
		require.NoError(t, c.Commit(r))
		got = append(got, r)
	}

	want := []BlockRange{{From: 0, To: 3}, {From: 4, To: 7}, {From: 8, To: 10}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ranges mismatch: %+v != %+v", got, want)
	}
}

func TestCursorCommitRejectsGaps(t *testing.T) {
	c := NewCursor(10, 0)

	assert.Error(t, c.Commit(BlockRange{From: 11, To: 12}))
	assert.Error(t, c.Commit(BlockRange{From: 10, To: 9}))
	require.NoError(t, c.Commit(BlockRange{From: 10, To: 12}))
	assert.Error(t, c.Commit(BlockRange{From: 10, To: 12}))
	assert.Equal(t, uint64(13), c.NextBlock())
}

func TestBlockRangeLen(t *testing.T) {
	assert.Equal(t, uint64(1), BlockRange{From: 5, To: 5}.Len())
	assert.Equal(t, uint64(0), BlockRange{From: 6, To: 5}.Len())
	assert.Equal(t, BlockRange{From: 5, To: 6}, BlockRange{From: 5, To: 100}.clamp(2))
	assert.Equal(t, BlockRange{From: 5, To: 100}, BlockRange{From: 5, To: 100}.clamp(0))
}
