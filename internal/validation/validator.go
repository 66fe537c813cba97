package validation

import (
	"reflect"
	"strings"

	"github.com/betbot/marketadmin/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Question 校验用的题目快照
type Question struct {
	Categories   domain.Categories `json:"category" validate:"min=1"`
	QuestionName string            `json:"questionName" validate:"notblank"`
	TimeEnd      string            `json:"timeEnd" validate:"required,timeend"`
	RuleMarket   string            `json:"ruleMarket" validate:"notblank"`
	Volume       decimal.Decimal   `json:"volume" validate:"gte=0"`
	HasLogo      bool              `json:"logo" validate:"required"`
	EPS          string            `json:"eps" validate:"-"`
	Symbol       string            `json:"symbol" validate:"-"`
	Answers      []Answer          `json:"answers" validate:"-"`
}

// Answer 校验用的答案快照
type Answer struct {
	Answer     string          `json:"answer" validate:"notblank"`
	AnswerName string          `json:"answerName" validate:"notblank"`
	Yes        decimal.Decimal `json:"yes" validate:"gt=0"`
	No         decimal.Decimal `json:"no" validate:"gt=0"`
	M          decimal.Decimal `json:"m" validate:"gt=0"`
	Volume     decimal.Decimal `json:"volume" validate:"gte=0"`
	PriceCheck decimal.Decimal `json:"priceCheck" validate:"omitempty,gt=0"`
}

// messages 字段+规则 -> 文案
var messages = map[string]string{
	"category.min":          "Category is required",
	"questionName.notblank": "Question name is required",
	"timeEnd.required":      "Time end is required",
	"timeEnd.timeend":       "Time end is invalid",
	"ruleMarket.notblank":   "Rule Market is required",
	"volume.gte":            "Volume must be >= 0",
	"logo.required":         "Logo question is required",
	"answer.notblank":       "Answer is required",
	"answerName.notblank":   "Answer Name is required",
	"yes.gt":                "'Yes' must be > 0",
	"no.gt":                 "'No' must be > 0",
	"m.gt":                  "'M' must be > 0",
	"priceCheck.gt":         "Price check must be > 0",
}

// MsgAnswersRequired 答案列表为空
const MsgAnswersRequired = "At least 1 answers required"

// conditionalRule 分类条件必填规则：题目包含 Category 时 Field 必填
type conditionalRule struct {
	Category domain.Category
	Field    string
	Blank    func(q *Question) bool
	Message  string
}

// conditionalRules 新增条件规则只需要在这里加一行
var conditionalRules = []conditionalRule{
	{
		Category: domain.CategoryEarnings,
		Field:    "eps",
		Blank: func(q *Question) bool {
			eps := strings.TrimSpace(q.EPS)
			return eps == "" || eps == "0"
		},
		Message: "Eps is required",
	},
	{
		Category: domain.CategoryEarnings,
		Field:    "symbol",
		Blank:    func(q *Question) bool { return strings.TrimSpace(q.Symbol) == "" },
		Message:  "Symbol is required",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// 错误 key 使用 json 名（与服务端返回的错误同名）
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("timeend", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseTimeEnd(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateQuestion 题目级 + 每行答案校验，返回合并后的映射（不修改输入）
func ValidateQuestion(q Question) *Errors {
	errs := NewErrors()
	collect(q, func(field, msg string) { errs.Set(field, msg) })

	for _, rule := range conditionalRules {
		if q.Categories.Contains(rule.Category) && rule.Blank(&q) {
			if errs.Field(rule.Field) == "" {
				errs.Set(rule.Field, rule.Message)
			}
		}
	}

	if len(q.Answers) == 0 {
		errs.Set("answers", MsgAnswersRequired)
	}
	for i, a := range q.Answers {
		row := ValidateAnswer(a)
		for field, msg := range row {
			errs.SetAnswer(i, field, msg)
		}
	}
	return errs
}

// ValidateAnswer 单行答案校验；无错误返回空 map
func ValidateAnswer(a Answer) map[string]string {
	row := map[string]string{}
	collect(a, func(field, msg string) { row[field] = msg })
	return row
}

func collect(s any, add func(field, msg string)) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		add("error", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		add(fe.Field(), msg)
	}
}
