package listing

import (
	"context"
	"sync"
	"time"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/questionapi"
	"github.com/betbot/marketadmin/pkg/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSuperseded 请求已被更新的请求取代，结果被丢弃
	ErrSuperseded = errors.New("fetch superseded")
	// ErrNotConfirmed 删除未确认，没有发请求
	ErrNotConfirmed = errors.New("delete not confirmed")
)

const (
	DefaultPageSize = 10
	DefaultDebounce = 400 * time.Millisecond
)

// State 列表当前展示的状态
type State struct {
	Page       int
	Search     string
	Questions  []domain.Question
	TotalPages int
	Loading    bool
	Err        error
}

// Option 可选配置
type Option func(*View)

func WithPageSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.limit = n
		}
	}
}

func WithDebounce(d time.Duration) Option {
	return func(v *View) {
		if d > 0 {
			v.debounce = d
		}
	}
}

// WithOnChange 每次提交新状态后回调（在锁外调用）
func WithOnChange(fn func(State)) Option {
	return func(v *View) { v.onChange = fn }
}

// WithSearch 初始搜索词（不触发请求）
func WithSearch(term string) Option {
	return func(v *View) {
		v.state.Search = term
		v.pending = term
	}
}

// WithContext 防抖触发的请求使用的 context
func WithContext(ctx context.Context) Option {
	return func(v *View) { v.ctx = ctx }
}

// View 列表/搜索/分页：只有最新一次请求的结果可以更新状态
type View struct {
	api      questionapi.API
	limit    int
	debounce time.Duration
	onChange func(State)
	ctx      context.Context

	mu          sync.Mutex
	state       State
	gen         uint64
	cancel      context.CancelFunc
	timer       *time.Timer
	debounceSeq uint64
	pending     string
}

// New 创建列表视图（page=1，搜索为空）
func New(api questionapi.API, opts ...Option) *View {
	v := &View{
		api:      api,
		limit:    DefaultPageSize,
		debounce: DefaultDebounce,
		ctx:      context.Background(),
		state:    State{Page: 1},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// State 当前状态快照
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Questions = append([]domain.Question(nil), v.state.Questions...)
	return s
}

// PendingSearch 正在防抖中的搜索词（输入框回显用）
func (v *View) PendingSearch() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending
}

// Fetch 按当前 page/search 重新加载
func (v *View) Fetch(ctx context.Context) error {
	v.mu.Lock()
	page, term := v.state.Page, v.state.Search
	v.mu.Unlock()
	return v.Load(ctx, page, term)
}

// Load 取消进行中的请求并加载 (page, term)；搜索词变化时 page 重置为 1。
// 被更新请求取代时返回 ErrSuperseded，结果不会提交。
func (v *View) Load(ctx context.Context, page int, term string) error {
	if page < 1 {
		page = 1
	}

	v.mu.Lock()
	if term != v.state.Search {
		page = 1
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	reqCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.state.Page = page
	v.state.Search = term
	v.state.Loading = true
	v.mu.Unlock()
	defer cancel()

	resp, err := v.api.List(reqCtx, questionapi.ListParams{Page: page, Limit: v.limit, Name: term})

	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		logger.WithFields(logrus.Fields{"page": page, "search": term}).Debug("discard superseded list result")
		return ErrSuperseded
	}
	v.cancel = nil
	v.state.Loading = false
	if err != nil {
		v.state.Err = err
	} else {
		v.state.Err = nil
		v.state.Questions = resp.Data
		v.state.TotalPages = resp.TotalPages
	}
	snapshot := v.state
	v.mu.Unlock()

	v.notify(snapshot)
	if err != nil {
		return errors.Wrap(err, "load questions")
	}
	return nil
}

func (v *View) notify(s State) {
	if v.onChange != nil {
		v.onChange(s)
	}
}

// SetPage 翻页
func (v *View) SetPage(ctx context.Context, page int) error {
	v.mu.Lock()
	term := v.state.Search
	v.mu.Unlock()
	return v.Load(ctx, page, term)
}

// NextPage 最后一页时不动
func (v *View) NextPage(ctx context.Context) error {
	p := v.Pagination()
	if p.NextDisabled {
		return nil
	}
	return v.SetPage(ctx, p.Page+1)
}

// PrevPage 第一页时不动
func (v *View) PrevPage(ctx context.Context) error {
	p := v.Pagination()
	if !p.ShowPrev {
		return nil
	}
	return v.SetPage(ctx, p.Page-1)
}

// SetSearch 输入搜索词；防抖时间内再次输入会重新计时，到期后提交并从第 1 页加载
func (v *View) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = term
	v.debounceSeq++
	seq := v.debounceSeq
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.debounce, func() {
		v.mu.Lock()
		if seq != v.debounceSeq {
			v.mu.Unlock()
			return
		}
		v.timer = nil
		changed := term != v.state.Search
		v.mu.Unlock()
		if !changed {
			return
		}
		if err := v.Load(v.ctx, 1, term); err != nil && !errors.Is(err, ErrSuperseded) {
			logger.Warnf("search %q: %v", term, err)
		}
	})
}

// CommitSearch 立即提交搜索词（跳过防抖）
func (v *View) CommitSearch(ctx context.Context, term string) error {
	v.mu.Lock()
	v.pending = term
	v.debounceSeq++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.mu.Unlock()
	return v.Load(ctx, 1, term)
}

// Delete 确认后删除并重新加载当前页；失败时列表不变
func (v *View) Delete(ctx context.Context, id string, confirm func(id string) bool) error {
	if confirm == nil || !confirm(id) {
		return ErrNotConfirmed
	}
	if err := v.api.Delete(ctx, id); err != nil {
		logger.WithField("question_id", id).Warnf("delete failed: %v", err)
		return err
	}
	logger.WithField("question_id", id).Info("question deleted")
	if err := v.Fetch(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// Watch 收到刷新信号时重新加载，直到 ctx 结束
func (v *View) Watch(ctx context.Context, refresh <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh:
			if err := v.Fetch(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				logger.Warnf("refresh list: %v", err)
			}
		}
	}
}

// Close 停止防抖计时器并取消进行中的请求
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.debounceSeq++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
