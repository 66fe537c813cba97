package attachment

// Manager 单个附件：待上传的本地二进制与已持久化的远程地址，预览时本地优先。
// 非并发安全，由拥有者（表单）单独使用。
type Manager struct {
	previewer Previewer

	pending      *Binary
	persistedURL string

	handle    string
	handleFor *Binary // handle 对应的二进制（按指针判等做记忆化）

	closed bool
}

// NewManager persistedURL 可为空
func NewManager(p Previewer, persistedURL string) *Manager {
	return &Manager{previewer: p, persistedURL: persistedURL}
}

// Select 替换待上传文件（nil 表示清除）；旧的预览句柄先释放
func (m *Manager) Select(b *Binary) {
	if b == m.pending {
		return
	}
	m.releaseHandle()
	m.pending = b
	m.closed = false
}

// Pending 待上传文件
func (m *Manager) Pending() *Binary {
	return m.pending
}

// PersistedURL 已持久化地址
func (m *Manager) PersistedURL() string {
	return m.persistedURL
}

// SetPersistedURL 服务端返回新地址后更新
func (m *Manager) SetPersistedURL(u string) {
	m.persistedURL = u
}

// HasImage 有待上传文件或已持久化地址
func (m *Manager) HasImage() bool {
	return m.pending != nil || m.persistedURL != ""
}

// CurrentPreview 本地文件的预览句柄，否则已持久化地址，否则空
func (m *Manager) CurrentPreview() string {
	if m.pending == nil {
		return m.persistedURL
	}
	if m.handle != "" && m.handleFor == m.pending {
		return m.handle
	}
	m.releaseHandle()
	if m.previewer == nil {
		return m.persistedURL
	}
	h, err := m.previewer.Allocate(m.pending)
	if err != nil {
		return m.persistedURL
	}
	m.handle, m.handleFor = h, m.pending
	return h
}

// Release 释放预览句柄并丢弃待上传文件；可重复调用
func (m *Manager) Release() {
	if m.closed {
		return
	}
	m.releaseHandle()
	m.pending = nil
	m.closed = true
}

func (m *Manager) releaseHandle() {
	if m.handle == "" {
		return
	}
	if m.previewer != nil {
		m.previewer.Release(m.handle)
	}
	m.handle, m.handleFor = "", nil
}
