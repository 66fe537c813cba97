package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/form"
	"github.com/betbot/marketadmin/internal/listing"
	"github.com/betbot/marketadmin/internal/questionapi"
	"github.com/betbot/marketadmin/internal/submission"
	"github.com/betbot/marketadmin/pkg/config"
	"github.com/betbot/marketadmin/pkg/logger"
	sdkhttp "github.com/betbot/marketadmin/pkg/sdk/http"
	"github.com/betbot/marketadmin/pkg/sigchan"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var (
	// 样式定义
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("14"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("2")) // 绿色

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")) // 红色

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// mode 当前输入模式
type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeConfirmDelete
	modeDetail
	modeConfirmResolve
)

// stateMsg 列表状态更新
type stateMsg listing.State

// detailMsg 题目详情加载完成；seq 对应发起请求时的 detailSeq
type detailMsg struct {
	id  string
	seq int
	q   *domain.Question
	err error
}

// opMsg 删除/结算等操作完成
type opMsg struct {
	flash string
	ok    bool
}

// model 是应用程序的状态
type model struct {
	api      questionapi.API
	view     *listing.View
	resolver *submission.Resolver
	updates  chan listing.State
	ctx      context.Context
	cancel   context.CancelFunc

	state  listing.State
	mode   mode
	cursor int
	search string

	detail       *domain.Question
	answerCursor int
	detailID     string
	detailSeq    int
	detailCancel context.CancelFunc

	flash   string
	flashOK bool
}

func newModel(api questionapi.API, cfg *config.Config) model {
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan listing.State, 16)
	refresh := sigchan.New(1)

	view := listing.New(api,
		listing.WithPageSize(cfg.PageSize),
		listing.WithDebounce(cfg.SearchDebounce),
		listing.WithContext(ctx),
		listing.WithOnChange(func(s listing.State) {
			// 只保留最新状态
			select {
			case updates <- s:
			default:
				select {
				case <-updates:
				default:
				}
				updates <- s
			}
		}),
	)
	go view.Watch(ctx, refresh.C())

	return model{
		api:      api,
		view:     view,
		resolver: submission.NewResolver(api, refresh),
		updates:  updates,
		ctx:      ctx,
		cancel:   cancel,
		state:    listing.State{Page: 1, Loading: true},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.waitState(), m.fetchCmd())
}

func (m model) waitState() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.updates:
			return stateMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// run 在后台执行列表操作；结果通过 OnChange 回来，这里只报告错误
func (m model) run(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(m.ctx); err != nil && !errors.Is(err, listing.ErrSuperseded) {
			return opMsg{flash: "Error loading questions: " + err.Error()}
		}
		return nil
	}
}

func (m model) fetchCmd() tea.Cmd { return m.run(m.view.Fetch) }

func (m model) selected() (domain.Question, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Questions) {
		return domain.Question{}, false
	}
	return m.state.Questions[m.cursor], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = listing.State(msg)
		if m.cursor >= len(m.state.Questions) {
			m.cursor = max(0, len(m.state.Questions)-1)
		}
		return m, m.waitState()

	case detailMsg:
		// 已离开详情页或者已经打开了别的题目，丢弃过期结果
		if msg.seq != m.detailSeq || msg.id != m.detailID ||
			(m.mode != modeDetail && m.mode != modeConfirmResolve) {
			return m, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, context.Canceled) {
				return m, nil
			}
			m.cancelDetail()
			m.flash, m.flashOK = "Error loading question: "+msg.err.Error(), false
			m.mode = modeBrowse
			return m, nil
		}
		m.detail = msg.q
		m.answerCursor = 0
		return m, nil

	case opMsg:
		m.flash, m.flashOK = msg.flash, msg.ok
		if msg.ok && m.detail != nil && (m.mode == modeDetail || m.mode == modeConfirmResolve) {
			cmd := m.loadDetail(m.detail.ID)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case modeSearch:
		switch msg.Type {
		case tea.KeyEsc:
			m.mode = modeBrowse
			return m, nil
		case tea.KeyEnter:
			m.mode = modeBrowse
			term := m.search
			return m, m.run(func(ctx context.Context) error { return m.view.CommitSearch(ctx, term) })
		case tea.KeyBackspace:
			if r := []rune(m.search); len(r) > 0 {
				m.search = string(r[:len(r)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			m.search += string(msg.Runes)
		default:
			return m, nil
		}
		m.view.SetSearch(m.search)
		return m, nil

	case modeConfirmDelete:
		q, ok := m.selected()
		m.mode = modeBrowse
		if !ok {
			return m, nil
		}
		confirmed := key == "y" || key == "Y"
		return m, func() tea.Msg {
			err := m.view.Delete(m.ctx, q.ID, func(string) bool { return confirmed })
			switch {
			case errors.Is(err, listing.ErrNotConfirmed):
				return opMsg{flash: "Delete cancelled"}
			case err != nil:
				return opMsg{flash: "Error deleting question: " + err.Error()}
			}
			return opMsg{flash: "Question deleted", ok: true}
		}

	case modeDetail:
		switch key {
		case "q":
			return m.quit()
		case "esc", "enter", "backspace":
			m.cancelDetail()
			m.mode = modeBrowse
			m.detail = nil
		case "up", "k":
			if m.answerCursor > 0 {
				m.answerCursor--
			}
		case "down", "j":
			if m.detail != nil && m.answerCursor < len(m.detail.Answers)-1 {
				m.answerCursor++
			}
		case "r":
			if m.detail != nil && m.answerCursor < len(m.detail.Answers) {
				m.mode = modeConfirmResolve
			}
		}
		return m, nil

	case modeConfirmResolve:
		m.mode = modeDetail
		switch key {
		case "y", "Y":
			return m, m.resolveCmd(domain.OutcomeYes)
		case "n", "N":
			return m, m.resolveCmd(domain.OutcomeNo)
		}
		m.flash, m.flashOK = "Resolve cancelled", false
		return m, nil
	}

	switch key {
	case "q":
		return m.quit()
	case "/":
		m.mode = modeSearch
		m.search = m.view.PendingSearch()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Questions)-1 {
			m.cursor++
		}
	case "right", "l":
		m.cursor = 0
		return m, m.run(m.view.NextPage)
	case "left", "h":
		m.cursor = 0
		return m, m.run(m.view.PrevPage)
	case "ctrl+r":
		return m, m.fetchCmd()
	case "d":
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
		}
	case "enter":
		if q, ok := m.selected(); ok {
			m.mode = modeDetail
			m.detail = nil
			cmd := m.loadDetail(q.ID)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.cancelDetail()
	m.view.Close()
	m.cancel()
	return m, tea.Quit
}

// loadDetail 取消上一次未完成的详情请求再发起新的
func (m *model) loadDetail(id string) tea.Cmd {
	m.cancelDetail()
	ctx, cancel := context.WithCancel(m.ctx)
	m.detailSeq++
	m.detailID, m.detailCancel = id, cancel
	api, seq := m.api, m.detailSeq
	return func() tea.Msg {
		q, err := api.Get(ctx, id)
		return detailMsg{id: id, seq: seq, q: q, err: err}
	}
}

func (m *model) cancelDetail() {
	if m.detailCancel != nil {
		m.detailCancel()
		m.detailCancel = nil
	}
	m.detailID = ""
}

func (m model) resolveCmd(outcome domain.Outcome) tea.Cmd {
	if m.detail == nil || m.answerCursor >= len(m.detail.Answers) {
		return nil
	}
	a := m.detail.Answers[m.answerCursor]
	return func() tea.Msg {
		_, res := m.resolver.Resolve(m.ctx, form.AnswerEntryFrom(nil, a), outcome)
		flash := res.Message
		if msg := res.Errors.Field("error"); msg != "" {
			flash += ": " + msg
		}
		return opMsg{flash: flash, ok: res.OK()}
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Market admin"))
	b.WriteString("\n\n")

	if m.mode == modeDetail || m.mode == modeConfirmResolve {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.listView())
	}

	if m.flash != "" {
		style := errStyle
		if m.flashOK {
			style = okStyle
		}
		b.WriteString("\n" + style.Render(m.flash) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render(m.help()))
	return b.String()
}

func (m model) listView() string {
	var b strings.Builder

	search := m.state.Search
	if m.mode == modeSearch {
		search = m.search + "▏"
	}
	b.WriteString(fmt.Sprintf("Search: %s\n\n", search))

	if m.state.Err != nil {
		b.WriteString(errStyle.Render("Error loading questions") + "\n")
	}
	if len(m.state.Questions) == 0 {
		if m.state.Loading {
			b.WriteString(mutedStyle.Render("Loading...") + "\n")
		} else {
			b.WriteString(mutedStyle.Render("No questions") + "\n")
		}
	}
	for i, q := range m.state.Questions {
		line := fmt.Sprintf("%-40s %-18s %-8s %s",
			truncate(q.QuestionName, 40),
			truncate(strings.Join(q.Categories.Strings(), ","), 18),
			q.MarketType,
			domain.FormatTimeEnd(q.TimeEnd))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	p := listing.NewPagination(m.state.Page, m.state.TotalPages)
	if p.Visible {
		b.WriteString("\n")
		if p.ShowPrev {
			b.WriteString("« ")
		}
		for _, n := range p.Pages() {
			if n == p.Page {
				b.WriteString(titleStyle.Render(fmt.Sprintf("[%d]", n)) + " ")
			} else {
				b.WriteString(fmt.Sprintf("%d ", n))
			}
		}
		if !p.NextDisabled {
			b.WriteString("»")
		}
		b.WriteString("\n")
	}

	if m.mode == modeConfirmDelete {
		if q, ok := m.selected(); ok {
			b.WriteString("\n" + errStyle.Render(fmt.Sprintf("Delete %q? (y/n)", q.QuestionName)) + "\n")
		}
	}
	return b.String()
}

func (m model) detailView() string {
	q := m.detail
	if q == nil {
		return mutedStyle.Render("Loading...") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(q.QuestionName) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s · ends %s",
		strings.Join(q.Categories.Strings(), ", "), q.MarketType, domain.FormatTimeEnd(q.TimeEnd))) + "\n")
	if len(q.Tags) > 0 {
		b.WriteString(mutedStyle.Render("tags: "+domain.JoinTags(q.Tags)) + "\n")
	}
	if q.RuleMarket != "" {
		b.WriteString("\n" + q.RuleMarket + "\n")
	}

	var rows strings.Builder
	for i, a := range q.Answers {
		status := "open"
		if a.Resolved {
			status = "resolved " + a.Outcome
		}
		line := fmt.Sprintf("%-20s %-20s yes=%s no=%s m=%s  %s",
			truncate(a.Answer, 20), truncate(a.AnswerName, 20),
			a.Yes.String(), a.No.String(), a.M.String(), status)
		if i == m.answerCursor {
			line = selectedStyle.Render(line)
		}
		rows.WriteString(line + "\n")
	}
	if len(q.Answers) == 0 {
		rows.WriteString(mutedStyle.Render("No answers"))
	}
	b.WriteString("\n" + borderStyle.Render(strings.TrimRight(rows.String(), "\n")) + "\n")
	if m.mode == modeConfirmResolve && m.answerCursor < len(q.Answers) {
		b.WriteString("\n" + errStyle.Render(fmt.Sprintf("Resolve %q as YES (y) or NO (n)?", q.Answers[m.answerCursor].Answer)) + "\n")
	}
	return b.String()
}

func (m model) help() string {
	switch m.mode {
	case modeSearch:
		return "type to search · enter: search now · esc: done"
	case modeConfirmDelete:
		return "y: delete · any other key: cancel"
	case modeDetail:
		return "↑/↓: answer · r: resolve · esc: back · q: quit"
	case modeConfirmResolve:
		return "y: resolve YES · n: resolve NO · any other key: cancel"
	}
	return "↑/↓: select · ←/→: page · /: search · enter: detail · d: delete · ctrl+r: reload · q: quit"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("MARKETADMIN_CONFIG"), "config file (.yaml/.yml/.json)")
	flag.Parse()

	config.SetConfigPath(*configPath)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	// 终端被 TUI 占用，日志只写文件
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = "logs/marketadmin-tui.log"
	}
	if err := logger.Init(logger.Config{
		Level:          cfg.Log.Level,
		OutputFile:     logFile,
		MaxSize:        cfg.Log.MaxSize,
		MaxBackups:     cfg.Log.MaxBackups,
		MaxAge:         cfg.Log.MaxAge,
		DisableConsole: true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	api := questionapi.NewClient(questionapi.Config{
		BaseURL:       cfg.API.BaseURL,
		QuestionsPath: cfg.API.QuestionsPath,
		AnswersPath:   cfg.API.AnswersPath,
	}, sdkhttp.WithTimeout(cfg.API.RequestTimeout))

	p := tea.NewProgram(newModel(api, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "运行程序失败: %v\n", err)
		os.Exit(1)
	}
}
