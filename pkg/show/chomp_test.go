package show

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChomps(t *testing.T) {
	// milliseconds
	want := [][2]int{
		{2000, 1000}, {1000, 500}, {500, 300}, {500, 300}, {1500, 300}, {500, 500},
		{500, 300}, {500, 1000}, {500, 500}, {500, 300}, {500, 1000},
	}

	chomps := DefaultChomps()
	require.Len(t, chomps, len(want))
	for i, w := range want {
		assert.Equal(t, time.Duration(w[0])*time.Millisecond, chomps[i].Open, "chomp %d open", i+1)
		assert.Equal(t, time.Duration(w[1])*time.Millisecond, chomps[i].Close, "chomp %d close", i+1)
	}
}

func TestChompDuration(t *testing.T) {
	assert.Equal(t, 14500*time.Millisecond, ChompDuration(DefaultChomps()))
	assert.Equal(t, time.Duration(0), ChompDuration(nil))
}
