package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/marketadmin/pkg/logger"
	"github.com/pkg/errors"
)

// Handler 关闭处理函数；ctx 带超时
type Handler func(ctx context.Context) error

type hook struct {
	name    string
	handler Handler
}

// Manager 优雅关闭管理器
type Manager struct {
	mu    sync.Mutex
	hooks []hook
	done  bool
}

// NewManager 创建新的关闭管理器
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调
func (m *Manager) OnShutdown(name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, handler: handler})
}

// Shutdown 并发执行所有关闭回调并等待完成或超时；只执行一次。
// 返回第一个失败回调的错误（或超时错误）
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	hooks := m.hooks
	m.mu.Unlock()

	if len(hooks) == 0 {
		logger.Info("没有注册的关闭回调")
		return nil
	}

	logger.Infof("开始优雅关闭，共 %d 个回调", len(hooks))

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	wg.Add(len(hooks))
	for _, h := range hooks {
		go func(h hook) {
			defer wg.Done()
			if err := h.handler(ctx); err != nil {
				logger.WithField("hook", h.name).Errorf("关闭回调失败: %v", err)
				errMu.Lock()
				if firstErr == nil {
					firstErr = errors.Wrap(err, h.name)
				}
				errMu.Unlock()
			}
		}(h)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("所有关闭回调已完成")
		errMu.Lock()
		defer errMu.Unlock()
		return firstErr
	case <-ctx.Done():
		logger.Warnf("关闭超时: %v", ctx.Err())
		return errors.Wrap(ctx.Err(), "shutdown")
	}
}
