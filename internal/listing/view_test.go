package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/questionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(ids ...string) *questionapi.ListResponse {
	resp := &questionapi.ListResponse{TotalPages: 3}
	for _, id := range ids {
		resp.Data = append(resp.Data, domain.Question{ID: id})
	}
	return resp
}

func TestLoad_LatestWins(t *testing.T) {
	ctx := context.Background()

	t.Run("late result ignored", func(t *testing.T) {
		m := questionapi.NewMockClient()
		started := make(chan struct{})
		release := make(chan struct{})
		m.ListFunc = func(ctx context.Context, p questionapi.ListParams) (*questionapi.ListResponse, error) {
			if p.Page == 1 {
				close(started)
				<-release
				return page("p1"), nil
			}
			return page("p2"), nil
		}
		v := New(m)

		errc := make(chan error, 1)
		go func() { errc <- v.Load(ctx, 1, "x") }()
		<-started
		require.NoError(t, v.Load(ctx, 2, "x"))
		close(release)
		assert.ErrorIs(t, <-errc, ErrSuperseded)

		s := v.State()
		assert.Equal(t, 2, s.Page)
		assert.Equal(t, "x", s.Search)
		require.Len(t, s.Questions, 1)
		assert.Equal(t, "p2", s.Questions[0].ID)
	})

	t.Run("superseded request is cancelled", func(t *testing.T) {
		m := questionapi.NewMockClient()
		started := make(chan struct{})
		m.ListFunc = func(ctx context.Context, p questionapi.ListParams) (*questionapi.ListResponse, error) {
			if p.Page == 1 {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return page("p2"), nil
		}
		v := New(m)

		errc := make(chan error, 1)
		go func() { errc <- v.Load(ctx, 1, "x") }()
		<-started
		require.NoError(t, v.Load(ctx, 2, "x"))
		assert.ErrorIs(t, <-errc, ErrSuperseded)
		s := v.State()
		assert.NoError(t, s.Err)
		assert.Equal(t, "p2", s.Questions[0].ID)
	})
}

func TestLoad_SearchChangeResetsPage(t *testing.T) {
	m := questionapi.NewMockClient()
	m.ListResponse = page("a")
	v := New(m, WithPageSize(5))
	ctx := context.Background()

	require.NoError(t, v.SetPage(ctx, 3))
	require.NoError(t, v.Load(ctx, 3, "btc"))
	assert.Equal(t, 1, v.State().Page)
	assert.Equal(t, questionapi.ListParams{Page: 1, Limit: 5, Name: "btc"}, m.ListRequests[1])
}

func TestLoad_ErrorKeepsList(t *testing.T) {
	m := questionapi.NewMockClient()
	m.ListResponse = page("a")
	v := New(m)
	ctx := context.Background()
	require.NoError(t, v.Fetch(ctx))

	m.ErrorOnNext["List"] = errors.New("boom")
	assert.Error(t, v.Fetch(ctx))
	s := v.State()
	assert.Error(t, s.Err)
	assert.Len(t, s.Questions, 1)
	assert.False(t, s.Loading)
}

func TestSetSearch_Debounce(t *testing.T) {
	m := questionapi.NewMockClient()
	changes := make(chan State, 4)
	v := New(m, WithDebounce(20*time.Millisecond), WithOnChange(func(s State) { changes <- s }))
	defer v.Close()

	v.SetSearch("b")
	v.SetSearch("bt")
	v.SetSearch("btc")
	assert.Equal(t, "btc", v.PendingSearch())

	select {
	case s := <-changes:
		assert.Equal(t, "btc", s.Search)
		assert.Equal(t, 1, s.Page)
	case <-time.After(time.Second):
		t.Fatal("debounced search never fired")
	}
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, m.CallCount("List"))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	m := questionapi.NewMockClient()
	m.ListResponse = page("q1", "q2")
	v := New(m)
	require.NoError(t, v.Fetch(ctx))

	err := v.Delete(ctx, "q1", func(string) bool { return false })
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.ErrorIs(t, v.Delete(ctx, "q1", nil), ErrNotConfirmed)
	assert.Equal(t, 0, m.CallCount("Delete"))

	m.ErrorOnNext["Delete"] = errors.New("500")
	assert.Error(t, v.Delete(ctx, "q1", func(string) bool { return true }))
	assert.Len(t, v.State().Questions, 2)
	assert.Equal(t, 1, m.CallCount("List"))

	m.ListResponse = page("q2")
	var asked string
	require.NoError(t, v.Delete(ctx, "q1", func(id string) bool { asked = id; return true }))
	assert.Equal(t, "q1", asked)
	assert.Equal(t, []string{"q1"}, m.Deleted)
	assert.Equal(t, 2, m.CallCount("List"))
	assert.Len(t, v.State().Questions, 1)
}

func TestWatch(t *testing.T) {
	m := questionapi.NewMockClient()
	v := New(m)
	refresh := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		v.Watch(ctx, refresh)
		close(done)
	}()

	refresh <- struct{}{}
	assert.Eventually(t, func() bool { return m.CallCount("List") == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestPagination(t *testing.T) {
	p := NewPagination(1, 1)
	assert.False(t, p.Visible)

	p = NewPagination(1, 3)
	assert.True(t, p.Visible)
	assert.False(t, p.ShowPrev)
	assert.False(t, p.NextDisabled)
	assert.Equal(t, []int{1, 2, 3}, p.Pages())

	p = NewPagination(3, 3)
	assert.True(t, p.ShowPrev)
	assert.True(t, p.NextDisabled)
}

func TestPagination_NegativeTotal(t *testing.T) {
	p := NewPagination(1, -1)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.Visible)
	assert.True(t, p.NextDisabled)
	assert.Empty(t, p.Pages())
}

func TestPagination_WindowAroundCurrentPage(t *testing.T) {
	huge := 1_000_000_000

	p := NewPagination(1, huge)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, p.Pages())

	p = NewPagination(500, huge)
	assert.Equal(t, []int{496, 497, 498, 499, 500, 501, 502, 503, 504}, p.Pages())

	p = NewPagination(20, 20)
	pages := p.Pages()
	require.Len(t, pages, MaxPageLinks)
	assert.Equal(t, 12, pages[0])
	assert.Equal(t, 20, pages[len(pages)-1])
}

func TestNextPrevPage(t *testing.T) {
	ctx := context.Background()
	m := questionapi.NewMockClient()
	m.ListResponse = page("a")
	v := New(m)
	require.NoError(t, v.Fetch(ctx))

	require.NoError(t, v.PrevPage(ctx))
	assert.Equal(t, 1, m.CallCount("List"))

	require.NoError(t, v.NextPage(ctx))
	require.NoError(t, v.NextPage(ctx))
	assert.Equal(t, 3, v.State().Page)
	require.NoError(t, v.NextPage(ctx))
	assert.Equal(t, 3, m.CallCount("List"))
}
