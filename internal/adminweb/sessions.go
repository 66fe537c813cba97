package adminweb

import (
	"context"
	"sync"
	"time"

	"github.com/betbot/marketadmin/internal/form"
	"github.com/betbot/marketadmin/internal/metrics"
	"github.com/betbot/marketadmin/internal/submission"
	"github.com/betbot/marketadmin/pkg/logger"
	"github.com/google/uuid"
)

// Session 一个创建/编辑草稿；表单持有附件，结束时必须 Close
type Session struct {
	ID   string
	Mode submission.Mode
	Form *form.QuestionForm

	mu      sync.Mutex
	touched time.Time
}

// Lock 同一草稿的请求串行处理
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionStore 草稿存储，空闲超过 ttl 的草稿被回收
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore ttl<=0 时使用 30 分钟
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{ttl: ttl, now: time.Now, sessions: make(map[string]*Session)}
}

// Create 保存一个新草稿
func (st *SessionStore) Create(mode submission.Mode, f *form.QuestionForm) *Session {
	s := &Session{ID: uuid.NewString(), Mode: mode, Form: f, touched: st.now()}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get 获取草稿并刷新空闲时间
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.touched = st.now()
	}
	return s, ok
}

// Close 移除草稿并释放附件；不存在时忽略
func (st *SessionStore) Close(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.Lock()
		s.Form.Close()
		s.Unlock()
	}
}

// Len 当前草稿数
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep 回收空闲超时的草稿，返回回收数量
func (st *SessionStore) Sweep() int {
	deadline := st.now().Add(-st.ttl)
	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.touched.Before(deadline) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Lock()
		s.Form.Close()
		s.Unlock()
	}
	if len(expired) > 0 {
		metrics.DraftsSwept.Add(int64(len(expired)))
		logger.Debugf("回收 %d 个过期草稿", len(expired))
	}
	return len(expired)
}

// Run 定期回收，直到 ctx 结束
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}

// CloseAll 关闭所有草稿（进程退出时）
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()
	for _, s := range all {
		s.Lock()
		s.Form.Close()
		s.Unlock()
	}
}
