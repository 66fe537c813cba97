package adminweb

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/betbot/marketadmin/internal/attachment"
	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/form"
	"github.com/betbot/marketadmin/internal/listing"
	"github.com/betbot/marketadmin/internal/submission"
	"github.com/betbot/marketadmin/internal/validation"
)

type errorView struct {
	Status  int
	Message string
}

type listView struct {
	Flash      string
	Search     string
	Questions  []domain.Question
	Pagination listing.Pagination
	Err        string
}

type answerView struct {
	Index   int
	Entry   form.AnswerEntry
	Errors  map[string]string
	Preview string
}

type formView struct {
	Flash       string
	FlashLevel  string
	SessionID   string
	Edit        bool
	Action      string
	CancelURL   string
	Form        *form.QuestionForm
	Errors      *validation.Errors
	Categories  []domain.Category
	MarketTypes []domain.MarketType
	LogoPreview string
	Answers     []answerView
	ShowAnswers bool
	// AnswerSummary 编辑页不显示答案行时的答案错误汇总
	AnswerSummary string
}

type detailView struct {
	Flash    string
	Question *domain.Question
	Outcomes []domain.Outcome
}

func newFormView(sess *Session, flash string, level string) formView {
	f := sess.Form
	v := formView{
		Flash:       flash,
		FlashLevel:  level,
		SessionID:   sess.ID,
		Edit:        sess.Mode == submission.ModeEdit,
		Form:        f,
		Errors:      f.Errors(),
		Categories:  domain.AllCategories,
		MarketTypes: domain.AllMarketTypes,
		LogoPreview: f.Logo().CurrentPreview(),
		ShowAnswers: sess.Mode == submission.ModeCreate,
	}
	if v.Edit {
		v.Action = "/questions/" + f.ID()
		v.CancelURL = "/questions/" + f.ID()
		v.AnswerSummary = answerSummary(f.Errors())
	} else {
		v.Action = "/questions"
		v.CancelURL = "/"
	}
	for i, a := range f.Answers() {
		av := answerView{Index: i, Entry: a, Errors: f.Errors().Answer(i)}
		if a.Logo != nil {
			av.Preview = a.Logo.CurrentPreview()
		}
		v.Answers = append(v.Answers, av)
	}
	return v
}

// flashLevel 结果 -> 提示样式
func flashLevel(r submission.Result) string {
	if r.OK() {
		return "ok"
	}
	return "error"
}

// errorSummary 把错误映射压成一行（用于跳转后的提示）
func errorSummary(errs *validation.Errors) string {
	if errs.Empty() {
		return ""
	}
	var parts []string
	keys := make([]string, 0, len(errs.Fields))
	for k := range errs.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, errs.Fields[k])
	}
	for _, i := range errs.AnswerIndexes() {
		row := errs.Answer(i)
		fields := make([]string, 0, len(row))
		for k := range row {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		for _, k := range fields {
			parts = append(parts, row[k])
		}
	}
	return strings.Join(parts, "; ")
}

// answerSummary 题目级 answers 错误加上每行错误（行号从 1 开始）
func answerSummary(errs *validation.Errors) string {
	var parts []string
	if msg := errs.Field("answers"); msg != "" {
		parts = append(parts, msg)
	}
	for _, i := range errs.AnswerIndexes() {
		row := errs.Answer(i)
		fields := make([]string, 0, len(row))
		for k := range row {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		for _, k := range fields {
			parts = append(parts, fmt.Sprintf("Answer %d: %s", i+1, row[k]))
		}
	}
	return strings.Join(parts, "; ")
}

// previewURL blob 句柄映射到 /previews/ 路由，远程地址原样返回
func previewURL(handle string) string {
	if strings.HasPrefix(handle, attachment.HandlePrefix) {
		return "/previews/" + strings.TrimPrefix(handle, attachment.HandlePrefix)
	}
	return handle
}

var templateFuncs = template.FuncMap{
	"previewURL": previewURL,
	"fieldErr": func(errs *validation.Errors, field string) string {
		return errs.Field(field)
	},
	"hasCategory": func(cs domain.Categories, c domain.Category) bool {
		return cs.Contains(c)
	},
	"joinTags": domain.JoinTags,
	"timeEnd":  domain.FormatTimeEnd,
	"add":      func(a, b int) int { return a + b },
	"categories": func(cs domain.Categories) string {
		return strings.Join(cs.Strings(), ", ")
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("marketadmin").Funcs(templateFuncs).Parse(templatesHTML)
}
