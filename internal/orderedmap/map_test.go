package orderedmap

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_CreatesDefaultsInArrivalOrder(t *testing.T) {
	created := 0
	m := New[string, *[]int](func() *[]int {
		created++
		return &[]int{}
	})

	for _, k := range []string{"b", "a", "b", "c", "a"} {
		v, err := m.Get(k)
		require.NoError(t, err)
		*v = append(*v, len(*v))
	}

	assert.Equal(t, 3, created)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	b, ok := m.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, *b)
}

func TestGet_SealedMapFails(t *testing.T) {
	m := New[string, int](func() int { return 7 })
	_, err := m.Get("x")
	require.NoError(t, err)

	m.Seal()
	assert.True(t, m.Sealed())

	v, err := m.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = m.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeyNotFound))
	assert.Contains(t, err.Error(), "missing")
	assert.False(t, m.Has("missing"), "failed look-up must not insert")
	assert.Equal(t, 1, m.Len())
}

func TestGet_NilFactoryBehavesSealed(t *testing.T) {
	m := New[int, string](nil)
	_, err := m.Get(1)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestSet_KeepsPositionOnOverwrite(t *testing.T) {
	m := New[string, int](nil)
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	var keys []string
	var values []int
	for k, v := range m.All() {
		keys = append(keys, k)
		values = append(values, v)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, []int{3, 2}, values)
	assert.Equal(t, []int{3, 2}, m.Values())
}

func TestAll_StopsEarly(t *testing.T) {
	m := New[int, int](nil)
	for i := range 5 {
		m.Set(i, i*i)
	}
	seen := 0
	for range m.All() {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestKeys_ReturnsCopy(t *testing.T) {
	m := New[string, int](nil)
	m.Set("a", 1)
	keys := m.Keys()
	keys[0] = "z"
	assert.Equal(t, []string{"a"}, m.Keys())
}

func TestClone_IsIndependent(t *testing.T) {
	m := New[string, int](func() int { return 0 })
	m.Set("a", 1)
	m.Seal()

	c := m.Clone()
	c.Set("b", 2)

	assert.True(t, c.Sealed())
	assert.Equal(t, []string{"a"}, m.Keys())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestMapValues(t *testing.T) {
	m := New[string, int](nil)
	m.Set("2", 2)
	m.Set("1", 1)

	out, err := MapValues(m, func(k string, v int) (string, error) {
		return k + ":" + strconv.Itoa(v*10), nil
	})
	require.NoError(t, err)
	assert.True(t, out.Sealed())
	assert.Equal(t, []string{"2", "1"}, out.Keys())
	assert.Equal(t, []string{"2:20", "1:10"}, out.Values())

	boom := errors.New("boom")
	_, err = MapValues(m, func(k string, v int) (string, error) {
		if k == "1" {
			return "", boom
		}
		return "", nil
	})
	assert.ErrorIs(t, err, boom)
}
