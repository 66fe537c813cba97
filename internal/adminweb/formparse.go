package adminweb

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/betbot/marketadmin/internal/attachment"
	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/form"
	"github.com/betbot/marketadmin/internal/validation"
	"github.com/pkg/errors"
)

// 表单提交按钮的 action
const (
	actionSubmit       = "submit"
	actionAddAnswer    = "add_answer"
	actionRemoveAnswer = "remove_answer"
	actionCancel       = "cancel"
)

var scalarFields = []string{
	form.FieldQuestionName,
	form.FieldDescription,
	form.FieldSubCategory,
	form.FieldGroupQuestion,
	form.FieldSymbol,
	form.FieldEPS,
	form.FieldRuleMarket,
	form.FieldTags,
	form.FieldMarketType,
	form.FieldTimeEnd,
	form.FieldVolume,
}

var answerFields = []string{
	form.AnswerFieldAnswer,
	form.AnswerFieldAnswerName,
	form.AnswerFieldYes,
	form.AnswerFieldNo,
	form.AnswerFieldM,
	form.AnswerFieldPriceCheck,
	form.AnswerFieldVolume,
}

func answerKey(i int, field string) string {
	return fmt.Sprintf("answers.%d.%s", i, field)
}

// parseAction "remove_answer:2" -> ("remove_answer", 2)
func parseAction(raw string) (string, int) {
	name, arg, _ := strings.Cut(raw, ":")
	if name == "" {
		return actionSubmit, -1
	}
	idx, err := strconv.Atoi(arg)
	if err != nil {
		idx = -1
	}
	return name, idx
}

func parseRequest(r *http.Request, maxBytes int64) error {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return r.ParseMultipartForm(maxBytes)
	}
	return r.ParseForm()
}

// uploaded 读取文件字段；没有选择文件时返回 nil
func uploaded(r *http.Request, key string) (*attachment.Binary, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	fhs := r.MultipartForm.File[key]
	if len(fhs) == 0 || fhs[0].Size == 0 {
		return nil, nil
	}
	return readFile(fhs[0])
}

func readFile(fh *multipart.FileHeader) (*attachment.Binary, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer f.Close()
	return attachment.NewBinary(fh.Filename, fh.Header.Get("Content-Type"), f)
}

// applyQuestionForm 把请求中的字段写入表单；无法解析的输入记入返回的错误映射
func applyQuestionForm(f *form.QuestionForm, r *http.Request, withAnswers bool) *validation.Errors {
	bad := validation.NewErrors()

	for _, key := range scalarFields {
		vals, ok := r.PostForm[key]
		if !ok {
			continue
		}
		if err := f.UpdateField(key, vals[0]); err != nil {
			bad.Set(key, invalidMessage(key))
		}
	}

	if r.PostForm.Get("categoriesPresent") != "" {
		var cs []domain.Category
		for _, raw := range r.PostForm["category"] {
			if c, err := domain.ParseCategory(raw); err == nil {
				cs = append(cs, c)
			}
		}
		f.SetCategories(cs...)
	}

	if b, err := uploaded(r, "logo"); err != nil {
		bad.Set("logo", "Logo upload failed")
	} else if b != nil {
		f.Logo().Select(b)
	}

	if !withAnswers {
		return bad
	}
	for i, a := range f.Answers() {
		if a.Resolved {
			continue
		}
		for _, field := range answerFields {
			vals, ok := r.PostForm[answerKey(i, field)]
			if !ok {
				continue
			}
			if err := f.UpdateAnswer(i, field, vals[0]); err != nil {
				bad.SetAnswer(i, field, invalidMessage(field))
			}
		}
		if b, err := uploaded(r, answerKey(i, "logo")); err != nil {
			bad.SetAnswer(i, "logo", "Logo upload failed")
		} else if b != nil {
			_ = f.SelectAnswerLogo(i, b)
		}
	}
	return bad
}

// applyAnswerForm 单个答案编辑表单
func applyAnswerForm(entry form.AnswerEntry, r *http.Request) (form.AnswerEntry, *validation.Errors) {
	bad := validation.NewErrors()
	for _, field := range answerFields {
		vals, ok := r.PostForm[field]
		if !ok {
			continue
		}
		next, err := entry.Update(field, vals[0])
		if err != nil {
			bad.SetAnswer(0, field, invalidMessage(field))
			continue
		}
		entry = next
	}
	if b, err := uploaded(r, "logo"); err != nil {
		bad.SetAnswer(0, "logo", "Logo upload failed")
	} else if b != nil {
		_ = entry.SelectLogo(b)
	}
	return entry, bad
}

func invalidMessage(field string) string {
	switch field {
	case form.FieldMarketType:
		return "Market type is invalid"
	case form.FieldVolume:
		return "Volume must be a number"
	}
	return field + " must be a number"
}
