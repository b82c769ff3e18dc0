package fifth

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_pushPop(t *testing.T) {
	st := newStack[int](stackCanary)

	st.push(1)
	st.push2(2, 3)
	st.push3(4, 5, 6)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, st.slice())
	assert.Equal(t, uint8(6), st.len())

	v1, v2, v3 := st.pop3()
	assert.Equal(t, [3]int{4, 5, 6}, [3]int{v1, v2, v3})
	a, b := st.pop2()
	assert.Equal(t, [2]int{2, 3}, [2]int{a, b})
	assert.Equal(t, 1, st.pop())
	assert.True(t, st.empty())
	assert.False(t, st.underflow())
	assert.False(t, st.overflow())
}

func TestStack_underflowTripsFence(t *testing.T) {
	st := newStack[int](stackCanary)
	st.pop()
	assert.True(t, st.underflow())
	assert.False(t, st.overflow())

	st.reset()
	assert.False(t, st.underflow())
}

func TestStack_overflowTripsFence(t *testing.T) {
	st := newStack[int](stackCanary)
	for i := 0; i < 129; i++ {
		st.push(i)
	}
	assert.True(t, st.overflow())
	assert.False(t, st.underflow())
}

// Random push/pop sequences bounded by the usable capacity must agree
// with a simple slice model, and the fences must never change.
func TestStack_model(t *testing.T) {
	rng := rand.New(rand.NewSource(5381))
	st := newStack[int](stackCanary)
	var model []int

	for step := 0; step < 10000; step++ {
		if n := len(model); n > 0 && (n >= 128 || rng.Intn(2) == 0) {
			got := st.pop()
			want := model[n-1]
			model = model[:n-1]
			require.Equal(t, want, got, "step %v", step)
		} else {
			v := rng.Int()
			st.push(v)
			model = append(model, v)
		}
		require.Equal(t, len(model), int(st.len()), "step %v", step)
		require.Equal(t, stackCanary, st.at(128), "overflow fence at step %v", step)
		require.Equal(t, stackCanary, st.at(255), "underflow fence at step %v", step)
	}
	for i, v := range model {
		assert.Equal(t, v, st.at(uint8(i)), "slot %v", i)
	}
}

func TestStack_controlCanary(t *testing.T) {
	st := newStack[control](control{kind: ctlCanary})
	st.push(control{kind: ctlIf, ip: 64})
	assert.Equal(t, control{kind: ctlIf, ip: 64}, st.pop())
	st.pop()
	assert.True(t, st.underflow())
}
