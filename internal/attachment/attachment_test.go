package attachment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bin(t *testing.T, name, body string) *Binary {
	t.Helper()
	b, err := NewBinary(name, "image/png", strings.NewReader(body))
	require.NoError(t, err)
	return b
}

func TestManager_SupersedeReleasesOnce(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg, "")

	a := bin(t, "a.png", "AAA")
	m.Select(a)
	ha := m.CurrentPreview()
	require.True(t, strings.HasPrefix(ha, HandlePrefix))
	// 记忆化：同一二进制不重复分配
	assert.Equal(t, ha, m.CurrentPreview())
	assert.EqualValues(t, 1, reg.Allocated())

	b := bin(t, "b.png", "BBB")
	m.Select(b)
	assert.EqualValues(t, 1, reg.Released())
	_, _, err := reg.Open(ha)
	assert.ErrorIs(t, err, ErrUnknownHandle)

	hb := m.CurrentPreview()
	assert.NotEqual(t, ha, hb)
	_, data, err := reg.Open(hb)
	require.NoError(t, err)
	assert.Equal(t, "BBB", string(data))

	m.Release()
	m.Release()
	assert.EqualValues(t, 2, reg.Released())
	assert.Equal(t, 0, reg.Live())
}

func TestManager_PersistedURLFallback(t *testing.T) {
	reg := NewRegistry()
	m := NewManager(reg, "https://cdn/logo.png")
	assert.Equal(t, "https://cdn/logo.png", m.CurrentPreview())
	assert.True(t, m.HasImage())

	m.Select(bin(t, "x.png", "X"))
	assert.True(t, strings.HasPrefix(m.CurrentPreview(), HandlePrefix))
	assert.Equal(t, "https://cdn/logo.png", m.PersistedURL())

	m.Select(nil)
	assert.Equal(t, "https://cdn/logo.png", m.CurrentPreview())
	assert.Equal(t, 0, reg.Live())
}

func TestManager_NoImage(t *testing.T) {
	m := NewManager(NewRegistry(), "")
	assert.Empty(t, m.CurrentPreview())
	assert.False(t, m.HasImage())
	m.Release()
}

func TestRegistry_OpenWithoutPrefix(t *testing.T) {
	reg := NewRegistry()
	h, err := reg.Allocate(bin(t, "a.png", "A"))
	require.NoError(t, err)
	ct, _, err := reg.Open(strings.TrimPrefix(h, HandlePrefix))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	reg.Release("blob:unknown")
	assert.EqualValues(t, 0, reg.Released())
}
