package sigchan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pending(ch <-chan struct{}) int {
	n := 0
	for {
		select {
		case <-ch:
			n++
		default:
			return n
		}
	}
}

func TestEmitCoalesces(t *testing.T) {
	c := New(1)
	c.Emit()
	c.Emit()
	assert.Equal(t, 1, pending(c.C()))
	assert.Equal(t, 0, pending(c.C()))
}

func TestSubscribe(t *testing.T) {
	c := New(1)
	sub, cancel := c.Subscribe()
	c.Emit()
	assert.Equal(t, 1, pending(sub))
	assert.Equal(t, 1, pending(c.C()))

	cancel()
	cancel()
	c.Emit()
	assert.Equal(t, 0, pending(sub))
	// 默认订阅者不受取消影响
	assert.Equal(t, 1, pending(c.C()))

	c.Close()
	c.Emit()
	assert.Equal(t, 0, pending(c.C()))

	var nilChan *Chan
	nilChan.Emit()
}
