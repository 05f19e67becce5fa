package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"workbench/internal/geom"
)

func TestFocusManager_Rotation(t *testing.T) {
	var changes [][2]string
	f := &FocusManager{OnChange: func(from, to string) { changes = append(changes, [2]string{from, to}) }}
	assert.Equal(t, "", f.Next())

	f.Sync([]string{"1", "2", "3"}, "2")
	assert.Equal(t, "3", f.Next())
	assert.Equal(t, "1", f.Next())
	assert.Equal(t, "3", f.Prev())
	assert.False(t, f.SetFocus("9"))
	assert.True(t, f.SetFocus("3"))
	assert.Equal(t, [][2]string{{"2", "3"}, {"3", "1"}, {"1", "3"}}, changes)
}

func TestFocusManager_Toward(t *testing.T) {
	//  1 | 2
	//  --+--
	//    3
	rects := map[string]geom.Rect{
		"1": {X: 0, Y: 0, Width: 50, Height: 20},
		"2": {X: 50, Y: 0, Width: 50, Height: 20},
		"3": {X: 0, Y: 20, Width: 100, Height: 20},
	}
	f := &FocusManager{}
	f.Sync([]string{"1", "2", "3"}, "1")

	assert.True(t, f.Toward(geom.Right, rects))
	assert.Equal(t, "2", f.Current)
	assert.False(t, f.Toward(geom.Right, rects))
	assert.True(t, f.Toward(geom.Bottom, rects))
	assert.Equal(t, "3", f.Current)
	assert.True(t, f.Toward(geom.Top, rects))
	assert.Equal(t, "1", f.Current, "both groups above overlap; the first in order wins a tie")
	assert.False(t, f.Toward(geom.Left, rects))
}
