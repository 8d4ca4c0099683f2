package confirmation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		id        uint32
		key       uint64
		wantPanic bool
	}{
		{name: "both positive", id: 123, key: 456},
		{name: "max values", id: ^uint32(0), key: ^uint64(0)},
		{name: "zero id", id: 0, key: 456, wantPanic: true},
		{name: "zero key", id: 123, key: 0, wantPanic: true},
		{name: "both zero", id: 0, key: 0, wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantPanic {
				assert.Panics(t, func() { New(tt.id, tt.key) })
				return
			}
			var c Confirmation
			assert.NotPanics(t, func() { c = New(tt.id, tt.key) })
			assert.Equal(t, tt.id, c.ID)
			assert.Equal(t, tt.key, c.Key)
			assert.False(t, c.IsZero())
		})
	}
}

func TestConfirmation_IsZero(t *testing.T) {
	assert.True(t, Confirmation{}.IsZero())
	assert.True(t, Confirmation{ID: 1}.IsZero())
	assert.True(t, Confirmation{Key: 1}.IsZero())
	assert.False(t, Confirmation{ID: 1, Key: 1}.IsZero())
}

func TestConfirmation_String(t *testing.T) {
	assert.Equal(t, "confirmation(123/456)", New(123, 456).String())
}

func TestSet(t *testing.T) {
	a := New(1, 10)
	b := New(2, 20)
	sameAsA := New(1, 10)
	sameIDOtherKey := New(1, 11)

	s := NewSet(a, b, sameAsA)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(sameAsA))
	assert.False(t, s.Contains(sameIDOtherKey))

	assert.False(t, s.Add(sameAsA))
	assert.True(t, s.Add(sameIDOtherKey))
	assert.Equal(t, 3, s.Len())

	assert.Equal(t, NewSet(b, a), NewSet(sameAsA, b))
}

func TestSet_Sorted(t *testing.T) {
	s := NewSet(New(3, 1), New(1, 9), New(2, 5), New(1, 2))

	assert.Equal(t, []Confirmation{
		{ID: 1, Key: 2},
		{ID: 1, Key: 9},
		{ID: 2, Key: 5},
		{ID: 3, Key: 1},
	}, s.Sorted())

	assert.Empty(t, Set{}.Sorted())
}
