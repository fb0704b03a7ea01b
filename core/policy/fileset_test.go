package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileSetLookup(t *testing.T) {
	files := FileSet{
		{Name: "assets/icons/icon16.png", Size: 1},
		{Name: "icon16.png", Size: 2},
		{Name: "images/logo.png", Size: 3},
	}

	tests := []struct {
		name     string
		path     string
		expected int64
		found    bool
	}{
		{"exact match wins", "icon16.png", 2, true},
		{"suffix match", "icons/icon16.png", 1, true},
		{"leading dot slash is literal", "./images/logo.png", 0, false},
		{"leading slash is literal", "/images/logo.png", 0, false},
		{"missing", "icon48.png", 0, false},
		{"empty path matches every name", "", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := files.Lookup(tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, f.Size)
		})
	}
}

func TestFileSetLookupIgnoresOrder(t *testing.T) {
	forward := FileSet{
		{Name: "b/icon.png", Size: 10},
		{Name: "a/icon.png", Size: 3 << 20},
	}
	reversed := FileSet{forward[1], forward[0]}

	f1, ok1 := forward.Lookup("icon.png")
	f2, ok2 := reversed.Lookup("icon.png")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, f1, f2)
	assert.Equal(t, "a/icon.png", f1.Name)
}

func TestFileSetTotalBytes(t *testing.T) {
	assert.Equal(t, int64(0), FileSet(nil).TotalBytes())
	assert.Equal(t, int64(6), FileSet{{Size: 1}, {Size: 2}, {Size: 3}}.TotalBytes())
}
