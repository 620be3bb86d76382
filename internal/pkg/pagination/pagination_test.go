package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMeta(t *testing.T) {
	params := &Params{Page: 2, Limit: 20, Offset: 20}
	meta := GetMeta(params, 45)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 3, meta.TotalPages)
	assert.EqualValues(t, 45, meta.Total)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}

func TestGetMetaSinglePage(t *testing.T) {
	params := &Params{Page: 1, Limit: 20}
	meta := GetMeta(params, 5)

	assert.Equal(t, 1, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}

func TestGetMetaExactMultiple(t *testing.T) {
	params := &Params{Page: 2, Limit: 10, Offset: 10}
	meta := GetMeta(params, 20)

	assert.Equal(t, 2, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrev)
}
