package adminweb

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/betbot/marketadmin/internal/attachment"
	"github.com/betbot/marketadmin/internal/questionapi"
	"github.com/betbot/marketadmin/internal/submission"
	"github.com/betbot/marketadmin/pkg/logger"
	"github.com/betbot/marketadmin/pkg/sigchan"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PageSize   int
	SessionTTL time.Duration
	// MaxUploadBytes 单次表单提交的内存上限
	MaxUploadBytes int64
}

type Server struct {
	cfg      Config
	api      questionapi.API
	previews *attachment.Registry
	sessions *SessionStore
	refresh  *sigchan.Chan

	pipeline *submission.Pipeline
	editor   *submission.AnswerEditor
	resolver *submission.Resolver

	tmpl *template.Template

	bgCancel func()
	bgDone   chan struct{}

	// closing 关闭后结束所有 SSE 连接
	closing   chan struct{}
	closeOnce sync.Once
}

func New(cfg Config, api questionapi.API) (*Server, error) {
	if api == nil {
		return nil, errors.New("question api is required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}

	refresh := sigchan.New(1)
	s := &Server{
		cfg:      cfg,
		api:      api,
		previews: attachment.NewRegistry(),
		sessions: NewSessionStore(cfg.SessionTTL),
		refresh:  refresh,
		pipeline: submission.NewPipeline(api, refresh),
		editor:   submission.NewAnswerEditor(api, refresh),
		resolver: submission.NewResolver(api, refresh),
		tmpl:     tmpl,
		closing:  make(chan struct{}),
	}
	s.startBackground()
	return s, nil
}

func (s *Server) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel
	s.bgDone = make(chan struct{})
	go func() {
		defer close(s.bgDone)
		s.sessions.Run(ctx, time.Minute)
	}()
}

// Close 结束 SSE 连接、停止后台回收并释放所有草稿；可重复调用
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
		s.bgCancel()
		<-s.bgDone
		s.sessions.CloseAll()
		s.refresh.Close()
	})
	return nil
}

// Previews 预览注册表
func (s *Server) Previews() *attachment.Registry { return s.previews }

// Sessions 草稿存储
func (s *Server) Sessions() *SessionStore { return s.sessions }

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", s.wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	r.GET("/previews/:handle", s.wrap(s.handlePreview))
	r.GET("/events", s.wrap(s.handleEvents))

	r.GET("/", s.wrap(s.handleList))

	questions := r.Group("/questions")
	questions.GET("/new", s.wrap(s.handleNewQuestion))
	questions.POST("", s.wrap(s.handleCreateQuestion))
	questionID := questions.Group("/:id")
	questionID.GET("", s.wrap(s.handleQuestionDetail))
	questionID.POST("", s.wrap(s.handleUpdateQuestion))
	questionID.GET("/edit", s.wrap(s.handleEditQuestion))
	questionID.POST("/delete", s.wrap(s.handleDeleteQuestion))

	answers := r.Group("/answers/:id")
	answers.POST("", s.wrap(s.handleUpdateAnswer))
	answers.POST("/resolve", s.wrap(s.handleResolveAnswer))

	return r
}

// requestLogger 每个请求一条日志（method、path、status、耗时、request id）
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", rid)
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"elapsed":    time.Since(start).String(),
			"request_id": rid,
		}).Debug("http request")
	}
}

type paramsKeyType string

const paramsKey paramsKeyType = "marketadmin_path_params"

// wrap adapts net/http handlers to gin, injecting path params into request context.
func (s *Server) wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := map[string]string{}
		for _, p := range c.Params {
			m[p.Key] = p.Value
		}
		ctx := context.WithValue(c.Request.Context(), paramsKey, m)
		c.Request = c.Request.WithContext(ctx)
		h(c.Writer, c.Request)
	}
}

func pathParam(r *http.Request, key string) string {
	m, _ := r.Context().Value(paramsKey).(map[string]string)
	return m[key]
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger.Errorf("render %s: %v", name, err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, msg string) {
	s.render(w, status, "error", errorView{Status: status, Message: msg})
}

// redirect 303 跳转，flash 作为提示行带过去
func redirect(w http.ResponseWriter, r *http.Request, path, flash string) {
	if flash != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "flash=" + url.QueryEscape(flash)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := s.previews.Open(pathParam(r, "handle"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
