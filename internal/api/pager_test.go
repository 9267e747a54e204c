package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPager(t *testing.T) {
	p := NewPager(10)
	assert.False(t, p.HasNext())
	assert.Equal(t, 1, p.Pages())

	p.Observe(1, 10, 25)
	assert.Equal(t, 3, p.Pages())
	from, to := p.Range()
	assert.Equal(t, 1, from)
	assert.Equal(t, 10, to)

	assert.True(t, p.Next())
	assert.True(t, p.Next())
	assert.False(t, p.Next(), "no page after the last")
	assert.Equal(t, 3, p.Page)
	from, to = p.Range()
	assert.Equal(t, 21, from)
	assert.Equal(t, 25, to)

	assert.True(t, p.Prev())
	assert.Equal(t, 2, p.Page)
}

func TestPager_Defaults(t *testing.T) {
	p := NewPager(0)
	assert.Equal(t, 20, p.PageSize)
	from, to := p.Range()
	assert.Zero(t, from)
	assert.Zero(t, to)
	assert.False(t, p.Prev())
}
