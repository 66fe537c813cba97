package adminweb

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/form"
	"github.com/betbot/marketadmin/internal/listing"
	"github.com/betbot/marketadmin/internal/submission"
	"github.com/betbot/marketadmin/pkg/logger"
	"github.com/pkg/errors"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	name := strings.TrimSpace(q.Get("name"))

	v := listing.New(s.api, listing.WithPageSize(s.cfg.PageSize), listing.WithSearch(name))
	view := listView{Flash: q.Get("flash"), Search: name}
	if err := v.Load(r.Context(), page, name); err != nil {
		logger.Warnf("list questions: %v", err)
		view.Err = "Error loading questions"
	}
	st := v.State()
	view.Questions = st.Questions
	view.Pagination = v.Pagination()
	s.render(w, http.StatusOK, "list", view)
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad form")
		return
	}
	back := "/"
	if ret := r.PostForm.Get("return"); strings.HasPrefix(ret, "/") && !strings.HasPrefix(ret, "//") {
		back = ret
	}

	// 浏览器端 confirm() 通过后才会带上 confirmed=yes
	if r.PostForm.Get("confirmed") != "yes" {
		redirect(w, r, back, "Delete cancelled")
		return
	}
	log := logger.WithField("question_id", id)
	if err := s.api.Delete(r.Context(), id); err != nil {
		log.Warnf("delete failed: %v", err)
		redirect(w, r, back, "Error deleting question")
		return
	}
	log.Info("question deleted")
	s.refresh.Emit()
	redirect(w, r, back, "Question deleted")
}

func (s *Server) handleQuestionDetail(w http.ResponseWriter, r *http.Request) {
	q, err := s.api.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		logger.Warnf("get question: %v", err)
		s.renderError(w, http.StatusBadGateway, "Error loading question")
		return
	}
	s.render(w, http.StatusOK, "detail", detailView{
		Flash:    r.URL.Query().Get("flash"),
		Question: q,
		Outcomes: []domain.Outcome{domain.OutcomeYes, domain.OutcomeNo},
	})
}

func (s *Server) handleNewQuestion(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(submission.ModeCreate, form.New(s.previews))
	sess.Lock()
	defer sess.Unlock()
	s.render(w, http.StatusOK, "form", newFormView(sess, "", ""))
}

func (s *Server) handleEditQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.editSession(r, pathParam(r, "id"))
	if err != nil {
		logger.Warnf("edit question: %v", err)
		s.renderError(w, http.StatusBadGateway, "Error loading question")
		return
	}
	sess.Lock()
	defer sess.Unlock()
	s.render(w, http.StatusOK, "form", newFormView(sess, "", ""))
}

// editSession 新建编辑草稿并用服务端数据回填
func (s *Server) editSession(r *http.Request, id string) (*Session, error) {
	q, err := s.api.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	f := form.New(s.previews)
	if err := f.Hydrate(*q); err != nil {
		f.Close()
		return nil, err
	}
	return s.sessions.Create(submission.ModeEdit, f), nil
}

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	if err := parseRequest(r, s.cfg.MaxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad form")
		return
	}
	sess, ok := s.sessions.Get(r.PostForm.Get("session"))
	if !ok || sess.Mode != submission.ModeCreate {
		sess = s.sessions.Create(submission.ModeCreate, form.New(s.previews))
	}
	s.handleQuestionPost(w, r, sess)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if err := parseRequest(r, s.cfg.MaxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad form")
		return
	}
	sess, ok := s.sessions.Get(r.PostForm.Get("session"))
	if !ok || sess.Mode != submission.ModeEdit || sess.Form.ID() != id {
		var err error
		if sess, err = s.editSession(r, id); err != nil {
			logger.Warnf("edit question: %v", err)
			s.renderError(w, http.StatusBadGateway, "Error loading question")
			return
		}
	}
	s.handleQuestionPost(w, r, sess)
}

// handleQuestionPost 处理草稿表单的各个按钮（提交、增删答案行、取消）
func (s *Server) handleQuestionPost(w http.ResponseWriter, r *http.Request, sess *Session) {
	action, idx := parseAction(r.PostForm.Get("action"))
	if action == actionCancel {
		s.sessions.Close(sess.ID)
		back := "/"
		if sess.Mode == submission.ModeEdit {
			back = "/questions/" + sess.Form.ID()
		}
		redirect(w, r, back, "")
		return
	}

	sess.Lock()
	bad := applyQuestionForm(sess.Form, r, sess.Mode == submission.ModeCreate)

	switch action {
	case actionAddAnswer:
		sess.Form.AddAnswer()
		sess.Form.MergeErrors(bad)
		view := newFormView(sess, "", "")
		sess.Unlock()
		s.render(w, http.StatusOK, "form", view)
		return
	case actionRemoveAnswer:
		if err := sess.Form.RemoveAnswer(idx); err != nil {
			logger.Debugf("remove answer %d: %v", idx, err)
		}
		sess.Form.MergeErrors(bad)
		view := newFormView(sess, "", "")
		sess.Unlock()
		s.render(w, http.StatusOK, "form", view)
		return
	}

	if !bad.Empty() {
		sess.Form.Validate()
		sess.Form.MergeErrors(bad)
		view := newFormView(sess, submission.MsgInvalid, "error")
		sess.Unlock()
		s.render(w, http.StatusUnprocessableEntity, "form", view)
		return
	}

	id := sess.Form.ID()
	res := s.pipeline.Submit(r.Context(), sess.Form, sess.Mode)
	if !res.OK() {
		flash := res.Message
		if sum := errorSummary(res.Errors); res.Status == submission.StatusRejected && sum != "" {
			flash += ": " + sum
		}
		view := newFormView(sess, flash, flashLevel(res))
		sess.Unlock()
		status := http.StatusUnprocessableEntity
		if res.Status == submission.StatusFailed {
			status = http.StatusBadGateway
		}
		s.render(w, status, "form", view)
		return
	}
	sess.Unlock()
	s.sessions.Close(sess.ID)

	if sess.Mode == submission.ModeEdit {
		redirect(w, r, "/questions/"+id, res.Message)
		return
	}
	if res.Question != nil && res.Question.ID != "" {
		redirect(w, r, "/questions/"+res.Question.ID, res.Message)
		return
	}
	redirect(w, r, "/", res.Message)
}

// persistedAnswer 从题目中找出答案
func (s *Server) persistedAnswer(r *http.Request, questionID, answerID string) (*domain.Answer, error) {
	q, err := s.api.Get(r.Context(), questionID)
	if err != nil {
		return nil, err
	}
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i], nil
		}
	}
	return nil, errors.Errorf("answer %s not found in question %s", answerID, questionID)
}

func (s *Server) handleUpdateAnswer(w http.ResponseWriter, r *http.Request) {
	answerID := pathParam(r, "id")
	if err := parseRequest(r, s.cfg.MaxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad form")
		return
	}
	questionID := r.PostForm.Get("questionId")
	back := "/questions/" + questionID

	a, err := s.persistedAnswer(r, questionID, answerID)
	if err != nil {
		logger.Warnf("update answer: %v", err)
		redirect(w, r, back, submission.MsgFailed)
		return
	}
	entry, bad := applyAnswerForm(form.AnswerEntryFrom(s.previews, *a), r)
	defer entry.Logo.Release()
	if !bad.Empty() {
		redirect(w, r, back, submission.MsgInvalid+": "+errorSummary(bad))
		return
	}

	_, res := s.editor.Save(r.Context(), entry)
	flash := res.Message
	if sum := errorSummary(res.Errors); sum != "" {
		flash += ": " + sum
	}
	redirect(w, r, back, flash)
}

func (s *Server) handleResolveAnswer(w http.ResponseWriter, r *http.Request) {
	answerID := pathParam(r, "id")
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Bad form")
		return
	}
	questionID := r.PostForm.Get("questionId")
	back := "/questions/" + questionID

	outcome, err := domain.ParseOutcome(r.PostForm.Get("outcome"))
	if err != nil {
		redirect(w, r, back, "Invalid outcome")
		return
	}
	a, err := s.persistedAnswer(r, questionID, answerID)
	if err != nil {
		logger.Warnf("resolve answer: %v", err)
		redirect(w, r, back, submission.MsgFailed)
		return
	}

	_, res := s.resolver.Resolve(r.Context(), form.AnswerEntryFrom(nil, *a), outcome)
	flash := res.Message
	if sum := errorSummary(res.Errors); sum != "" {
		flash += ": " + sum
	}
	redirect(w, r, back, flash)
}
