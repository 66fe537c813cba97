package attachment

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// HandlePrefix 预览句柄前缀
const HandlePrefix = "blob:"

// ErrUnknownHandle 句柄不存在或已释放
var ErrUnknownHandle = errors.New("unknown preview handle")

// Previewer 为本地二进制分配可展示的预览句柄
type Previewer interface {
	Allocate(b *Binary) (string, error)
	Release(handle string)
}

// Binary 用户选择的本地文件
type Binary struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewBinary 读入文件内容
func NewBinary(name, contentType string, r io.Reader) (*Binary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read attachment")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Binary{Name: name, ContentType: contentType, Data: data}, nil
}

// Reader 每次调用返回新的 reader（可多次上传）
func (b *Binary) Reader() io.Reader {
	return bytes.NewReader(b.Data)
}

type entry struct {
	contentType string
	data        []byte
}

// Registry 进程内预览注册表：分配 blob:<uuid> 句柄，释放前可通过 Open 读取内容
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry

	allocated atomic.Int64
	released  atomic.Int64
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

func (r *Registry) Allocate(b *Binary) (string, error) {
	if b == nil {
		return "", errors.New("nil binary")
	}
	handle := HandlePrefix + uuid.NewString()
	r.mu.Lock()
	r.entries[handle] = entry{contentType: b.ContentType, data: b.Data}
	r.mu.Unlock()
	r.allocated.Add(1)
	return handle, nil
}

// Release 未知句柄忽略
func (r *Registry) Release(handle string) {
	r.mu.Lock()
	_, ok := r.entries[handle]
	delete(r.entries, handle)
	r.mu.Unlock()
	if ok {
		r.released.Add(1)
	}
}

// Open 读取句柄内容；handle 可以带或不带 blob: 前缀
func (r *Registry) Open(handle string) (contentType string, data []byte, err error) {
	if !strings.HasPrefix(handle, HandlePrefix) {
		handle = HandlePrefix + handle
	}
	r.mu.RLock()
	e, ok := r.entries[handle]
	r.mu.RUnlock()
	if !ok {
		return "", nil, errors.Wrap(ErrUnknownHandle, handle)
	}
	return e.contentType, e.data, nil
}

// Live 当前未释放的句柄数
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Allocated 累计分配次数
func (r *Registry) Allocated() int64 { return r.allocated.Load() }

// Released 累计释放次数
func (r *Registry) Released() int64 { return r.released.Load() }
