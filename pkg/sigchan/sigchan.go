package sigchan

import "sync"

// Chan 非阻塞的信号广播：Emit 通知所有订阅者事件发生，不传递数据。
// 订阅者来不及消费时，多次信号合并为一次。
type Chan struct {
	mu     sync.Mutex
	size   int
	subs   []chan struct{}
	def    chan struct{}
	closed bool
}

// New 创建信号 channel；bufferSize 为每个订阅者的缓冲大小（至少 1）
func New(bufferSize int) *Chan {
	if bufferSize < 1 {
		bufferSize = 1
	}
	def := make(chan struct{}, bufferSize)
	return &Chan{size: bufferSize, def: def, subs: []chan struct{}{def}}
}

// Emit 发送信号（非阻塞）
func (c *Chan) Emit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, s := range c.subs {
		select {
		case s <- struct{}{}:
		default:
			// 已满，合并
		}
	}
}

// C 默认订阅者（用于 select）
func (c *Chan) C() <-chan struct{} {
	return c.def
}

// Subscribe 新增一个订阅者；返回的 cancel 取消订阅
func (c *Chan) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, c.size)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s == ch {
					c.subs = append(c.subs[:i], c.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// Close 之后 Emit 不再生效；订阅者的 channel 不关闭
func (c *Chan) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
