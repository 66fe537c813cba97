package listing

// MaxPageLinks 页码列表最多显示的页数（以当前页为中心）
const MaxPageLinks = 9

// Pagination 分页控件的展示模型
type Pagination struct {
	Page       int
	TotalPages int
	// Visible 总页数 > 1 时才显示
	Visible bool
	// ShowPrev 第 1 页不显示“上一页”
	ShowPrev bool
	// NextDisabled 最后一页“下一页”不可点
	NextDisabled bool
}

// NewPagination 由页码与总页数计算；服务端给出负的总页数时按 0 处理
func NewPagination(page, totalPages int) Pagination {
	if page < 1 {
		page = 1
	}
	if totalPages < 0 {
		totalPages = 0
	}
	return Pagination{
		Page:         page,
		TotalPages:   totalPages,
		Visible:      totalPages > 1,
		ShowPrev:     page > 1,
		NextDisabled: page >= totalPages,
	}
}

// Pages 页码列表：总页数不超过 MaxPageLinks 时为 1..TotalPages，
// 否则为包含当前页的 MaxPageLinks 个连续页码
func (p Pagination) Pages() []int {
	if p.TotalPages <= 0 {
		return nil
	}
	first, last := 1, p.TotalPages
	if p.TotalPages > MaxPageLinks {
		first = p.Page - MaxPageLinks/2
		if first < 1 {
			first = 1
		}
		last = first + MaxPageLinks - 1
		if last > p.TotalPages {
			last = p.TotalPages
			first = last - MaxPageLinks + 1
		}
	}
	out := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, i)
	}
	return out
}

// Pagination 当前状态的分页模型
func (v *View) Pagination() Pagination {
	v.mu.Lock()
	defer v.mu.Unlock()
	return NewPagination(v.state.Page, v.state.TotalPages)
}
