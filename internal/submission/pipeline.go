package submission

import (
	"context"
	"encoding/json"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/form"
	"github.com/betbot/marketadmin/internal/metrics"
	"github.com/betbot/marketadmin/internal/questionapi"
	"github.com/betbot/marketadmin/internal/validation"
	"github.com/betbot/marketadmin/pkg/logger"
	"github.com/betbot/marketadmin/pkg/sigchan"
	"github.com/sirupsen/logrus"
)

// Pipeline 题目提交：本地校验 -> 序列化 -> 单次请求 -> 结果回写表单
type Pipeline struct {
	api     questionapi.API
	refresh *sigchan.Chan
}

// NewPipeline refresh 可为 nil
func NewPipeline(api questionapi.API, refresh *sigchan.Chan) *Pipeline {
	return &Pipeline{api: api, refresh: refresh}
}

// Submit 提交表单。每次调用最多发出一个请求，不重试。
// 成功时 create 模式重置表单，edit 模式保留表单交给调用方处理。
func (p *Pipeline) Submit(ctx context.Context, f *form.QuestionForm, mode Mode) Result {
	res := p.submit(ctx, f, mode)
	metrics.Submissions.Add(res.Status.String(), 1)
	return res
}

func (p *Pipeline) submit(ctx context.Context, f *form.QuestionForm, mode Mode) Result {
	log := logger.WithFields(logrus.Fields{"mode": mode.String(), "question_id": f.ID()})

	if !f.Validate() {
		return Result{Status: StatusInvalid, Message: MsgInvalid, Errors: f.Errors().Clone()}
	}
	if mode == ModeEdit && f.ID() == "" {
		f.SetError("error", "Question id is missing")
		return Result{Status: StatusInvalid, Message: MsgInvalid, Errors: f.Errors().Clone()}
	}

	payload, err := EncodeQuestion(f, mode)
	if err != nil {
		// 校验已通过，这里只会是编码失败
		log.Errorf("encode question: %v", err)
		return Result{Status: StatusFailed, Message: MsgFailed, Err: err}
	}

	var resp *questionapi.WriteResponse
	if mode == ModeEdit {
		resp, err = p.api.Update(ctx, payload)
	} else {
		resp, err = p.api.Create(ctx, payload)
	}
	if err != nil {
		log.Warnf("submit question failed: %v", err)
		return Result{Status: StatusFailed, Message: MsgFailed, Err: err}
	}

	if resp.Rejected() {
		serverErrs := serverErrors(resp)
		f.MergeErrors(serverErrs)
		log.WithField("errors", serverErrs.Fields).Info("submit rejected by server")
		return Result{Status: StatusRejected, Message: MsgRejected, Errors: serverErrs}
	}

	res := Result{Status: StatusSucceeded, Question: resp.Question()}
	if mode == ModeCreate {
		res.Message = MsgCreated
		f.Reset()
	} else {
		res.Message = MsgUpdated
	}
	log.Info("question submitted")
	p.refresh.Emit()
	return res
}

// serverErrors 服务端错误映射；顶层 error 放在 "error" key 下
func serverErrors(resp *questionapi.WriteResponse) *validation.Errors {
	errs := resp.Errors.Clone()
	if msg := resp.ErrorMessage(); msg != "" && errs.Field("error") == "" {
		errs.Set("error", msg)
	}
	return errs
}

// AnswerEditor 单个答案编辑（PUT {answers}/{id}）
type AnswerEditor struct {
	api     questionapi.API
	refresh *sigchan.Chan
}

func NewAnswerEditor(api questionapi.API, refresh *sigchan.Chan) *AnswerEditor {
	return &AnswerEditor{api: api, refresh: refresh}
}

// Save 校验并保存答案；错误映射的行号固定为 0。
// 成功时返回服务端回写后的快照（logo 地址更新、待上传文件释放）。
func (e *AnswerEditor) Save(ctx context.Context, entry form.AnswerEntry) (form.AnswerEntry, Result) {
	out, res := e.save(ctx, entry)
	metrics.AnswerSaves.Add(res.Status.String(), 1)
	return out, res
}

func (e *AnswerEditor) save(ctx context.Context, entry form.AnswerEntry) (form.AnswerEntry, Result) {
	if entry.Resolved {
		return entry, Result{Status: StatusInvalid, Message: MsgAlreadyDone}
	}
	if entry.ID == "" {
		errs := validation.NewErrors()
		errs.Set("error", "Answer id is missing")
		return entry, Result{Status: StatusInvalid, Message: MsgInvalid, Errors: errs}
	}
	if row := entry.Validate(); len(row) > 0 {
		errs := validation.NewErrors()
		for k, v := range row {
			errs.SetAnswer(0, k, v)
		}
		return entry, Result{Status: StatusInvalid, Message: MsgInvalid, Errors: errs}
	}

	payload, err := EncodeAnswer(entry)
	if err != nil {
		return entry, Result{Status: StatusFailed, Message: MsgFailed, Err: err}
	}
	log := logger.WithField("answer_id", entry.ID)
	resp, err := e.api.UpdateAnswer(ctx, entry.ID, payload)
	if err != nil {
		log.Warnf("update answer failed: %v", err)
		return entry, Result{Status: StatusFailed, Message: MsgFailed, Err: err}
	}
	if resp.Rejected() {
		return entry, Result{Status: StatusRejected, Message: MsgRejected, Errors: serverErrors(resp)}
	}

	if saved := decodeAnswer(resp); saved != nil && saved.LogoURL != "" && entry.Logo != nil {
		entry.Logo.SetPersistedURL(saved.LogoURL)
		entry.Logo.Select(nil)
	}
	log.Info("answer updated")
	e.refresh.Emit()
	return entry, Result{Status: StatusSucceeded, Message: MsgAnswerUpdated}
}

func decodeAnswer(resp *questionapi.WriteResponse) *domain.Answer {
	if len(resp.Data) == 0 {
		return nil
	}
	var a domain.Answer
	if err := json.Unmarshal(resp.Data, &a); err != nil {
		return nil
	}
	return &a
}

// Resolver 答案结算（单向）
type Resolver struct {
	api     questionapi.API
	refresh *sigchan.Chan
}

func NewResolver(api questionapi.API, refresh *sigchan.Chan) *Resolver {
	return &Resolver{api: api, refresh: refresh}
}

// Resolve 结算答案；已结算的答案不会再发请求。成功时返回已结算的快照
func (r *Resolver) Resolve(ctx context.Context, entry form.AnswerEntry, outcome domain.Outcome) (form.AnswerEntry, Result) {
	out, res := r.resolve(ctx, entry, outcome)
	metrics.Resolves.Add(res.Status.String(), 1)
	return out, res
}

func (r *Resolver) resolve(ctx context.Context, entry form.AnswerEntry, outcome domain.Outcome) (form.AnswerEntry, Result) {
	if entry.Resolved {
		return entry, Result{Status: StatusInvalid, Message: MsgAlreadyDone}
	}
	log := logger.WithFields(logrus.Fields{"answer_id": entry.ID, "outcome": outcome})
	resp, err := r.api.Resolve(ctx, entry.ID, outcome)
	if err != nil {
		log.Warnf("resolve failed: %v", err)
		return entry, Result{Status: StatusFailed, Message: MsgFailed, Err: err}
	}
	if resp.Rejected() {
		return entry, Result{Status: StatusRejected, Message: MsgRejected, Errors: serverErrors(resp)}
	}
	resolved, err := entry.Resolve(outcome)
	if err != nil {
		return entry, Result{Status: StatusInvalid, Message: MsgAlreadyDone}
	}
	log.Info("answer resolved")
	r.refresh.Emit()
	return resolved, Result{Status: StatusSucceeded, Message: MsgResolved}
}
