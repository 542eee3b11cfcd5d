package registry

import (
	"sync"
	"testing"

	"formsuggest/internal/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailField() field.Field {
	return field.Field{Tag: "input", ID: "email", Name: "email", Rect: field.Rect{Left: 10, Top: 20}}
}

func TestDisableEnable(t *testing.T) {
	r := New()
	f := emailField()

	assert.False(t, r.IsDisabled(f))
	r.Disable(f)
	assert.True(t, r.IsDisabled(f))

	// Same identifier, different snapshot.
	again := f
	again.Value = "typed"
	again.Ref = "other"
	assert.True(t, r.IsDisabled(again))

	moved := f
	moved.Rect.Top = 400
	assert.False(t, r.IsDisabled(moved))

	r.Enable(f)
	assert.False(t, r.IsDisabled(f))
	assert.Equal(t, 0, r.Disabled())
}

func TestActiveAndReset(t *testing.T) {
	r := New()
	_, ok := r.Active()
	assert.False(t, ok)

	f := emailField()
	r.SetActive(f)
	got, ok := r.Active()
	require.True(t, ok)
	assert.Equal(t, f, got)

	r.Disable(f)
	r.Reset()
	_, ok = r.Active()
	assert.False(t, ok)
	assert.False(t, r.IsDisabled(f))
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f := emailField()
			f.Rect.Left = float64(i)
			r.Disable(f)
			r.SetActive(f)
			_ = r.IsDisabled(f)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, r.Disabled())
}
