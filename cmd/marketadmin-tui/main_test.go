package main

import (
	"testing"
	"time"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/listing"
	"github.com/betbot/marketadmin/internal/questionapi"
	"github.com/betbot/marketadmin/pkg/config"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (model, *questionapi.MockClient) {
	t.Helper()
	api := questionapi.NewMockClient()
	api.Questions["q1"] = &domain.Question{ID: "q1", QuestionName: "First"}
	api.Questions["q2"] = &domain.Question{ID: "q2", QuestionName: "Second"}

	m := newModel(api, &config.Config{PageSize: 10, SearchDebounce: 400 * time.Millisecond})
	t.Cleanup(func() {
		m.view.Close()
		m.cancel()
	})
	m.state = listing.State{Page: 1, Questions: []domain.Question{{ID: "q1"}, {ID: "q2"}}}
	return m, api
}

func press(t *testing.T, m tea.Model, k tea.KeyType) (tea.Model, tea.Cmd) {
	t.Helper()
	return m.Update(tea.KeyMsg{Type: k})
}

func TestDetail_LateReplyForEarlierQuestionDropped(t *testing.T) {
	md, _ := newTestModel(t)

	var m tea.Model = md
	m, first := press(t, m, tea.KeyEnter)
	require.NotNil(t, first)
	m, _ = press(t, m, tea.KeyEsc)
	m, _ = press(t, m, tea.KeyDown)
	m, second := press(t, m, tea.KeyEnter)
	require.NotNil(t, second)

	m, _ = m.Update(second())
	// q1 的请求比 q2 晚返回
	m, _ = m.Update(first())

	got := m.(model)
	assert.Equal(t, modeDetail, got.mode)
	require.NotNil(t, got.detail)
	assert.Equal(t, "q2", got.detail.ID)
}

func TestDetail_ReplyAfterLeavingIgnored(t *testing.T) {
	md, _ := newTestModel(t)

	var m tea.Model = md
	m, load := press(t, m, tea.KeyEnter)
	require.NotNil(t, load)
	m, _ = press(t, m, tea.KeyEsc)

	m, _ = m.Update(load())
	got := m.(model)
	assert.Equal(t, modeBrowse, got.mode)
	assert.Nil(t, got.detail)
	assert.Empty(t, got.flash)
	assert.Nil(t, got.detailCancel)
}

func TestDetail_ReloadAfterResolveSupersedesPending(t *testing.T) {
	md, api := newTestModel(t)

	var m tea.Model = md
	m, load := press(t, m, tea.KeyEnter)
	stale := load()
	m, _ = m.Update(stale)
	require.Equal(t, "First", m.(model).detail.QuestionName)

	api.Questions["q1"] = &domain.Question{ID: "q1", QuestionName: "First (resolved)"}
	m, reload := m.Update(opMsg{flash: "Answer resolved", ok: true})
	require.NotNil(t, reload)

	m, _ = m.Update(reload())
	// 重复投递旧请求的结果不会覆盖新数据
	m, _ = m.Update(stale)
	got := m.(model)
	assert.Equal(t, "First (resolved)", got.detail.QuestionName)
	assert.Equal(t, 2, api.CallCount("Get"))
}
