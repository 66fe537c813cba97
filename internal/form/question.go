package form

import (
	"strings"

	"github.com/betbot/marketadmin/internal/attachment"
	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/validation"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrAlreadyHydrated 编辑表单只能回填一次
	ErrAlreadyHydrated = errors.New("form already hydrated")
	// ErrAnswerIndex 答案行号越界
	ErrAnswerIndex = errors.New("answer index out of range")
)

// 题目标量字段名
const (
	FieldQuestionName  = "questionName"
	FieldDescription   = "description"
	FieldSubCategory   = "subCategory"
	FieldGroupQuestion = "groupQuestion"
	FieldSymbol        = "symbol"
	FieldEPS           = "eps"
	FieldRuleMarket    = "ruleMarket"
	FieldTags          = "tags"
	FieldMarketType    = "marketType"
	FieldTimeEnd       = "timeEnd"
	FieldVolume        = "volume"
)

var textFields = map[string]bool{
	FieldQuestionName:  true,
	FieldDescription:   true,
	FieldSubCategory:   true,
	FieldGroupQuestion: true,
	FieldSymbol:        true,
	FieldEPS:           true,
	FieldRuleMarket:    true,
	FieldTags:          true,
	FieldTimeEnd:       true,
}

// DefaultCategory 新建表单的默认分类
const DefaultCategory = domain.CategoryCrypto

// QuestionForm 题目表单状态：标量字段、分类集合、logo、答案列表与错误映射。
// 单一拥有者使用，不做并发保护。
type QuestionForm struct {
	previewer attachment.Previewer

	id         string
	text       map[string]string
	marketType domain.MarketType
	volume     decimal.Decimal
	categories domain.Categories
	logo       *attachment.Manager
	answers    []AnswerEntry
	errs       *validation.Errors
	hydrated   bool
}

// New 空白表单（一行空答案、CRYPTO、ALL）
func New(p attachment.Previewer) *QuestionForm {
	f := &QuestionForm{previewer: p}
	f.reset()
	return f
}

func (f *QuestionForm) reset() {
	f.id = ""
	f.text = make(map[string]string, len(textFields))
	f.marketType = domain.MarketTypeAll
	f.volume = decimal.Zero
	f.categories = domain.Categories{DefaultCategory}
	f.logo = attachment.NewManager(f.previewer, "")
	f.answers = []AnswerEntry{NewAnswerEntry(f.previewer)}
	f.errs = validation.NewErrors()
	f.hydrated = false
}

// ID 已持久化的题目 id；新建时为空
func (f *QuestionForm) ID() string { return f.id }

// Hydrated 是否已从服务端回填
func (f *QuestionForm) Hydrated() bool { return f.hydrated }

// UpdateField 更新一个标量字段
func (f *QuestionForm) UpdateField(key, value string) error {
	switch {
	case textFields[key]:
		f.text[key] = value
	case key == FieldMarketType:
		mt, err := domain.ParseMarketType(value)
		if err != nil {
			return err
		}
		f.marketType = mt
	case key == FieldVolume:
		d, err := parseDecimal(value)
		if err != nil {
			return errors.Wrapf(err, "field %s", key)
		}
		f.volume = d
	default:
		return errors.Wrap(ErrUnknownField, key)
	}
	return nil
}

// Field 标量字段的文本形式
func (f *QuestionForm) Field(key string) string {
	switch key {
	case FieldMarketType:
		return string(f.marketType)
	case FieldVolume:
		return f.volume.String()
	}
	return f.text[key]
}

func (f *QuestionForm) MarketType() domain.MarketType { return f.marketType }

func (f *QuestionForm) Volume() decimal.Decimal { return f.volume }

// Tags 规范化后的标签集合
func (f *QuestionForm) Tags() []string {
	return domain.NormalizeTags(f.text[FieldTags])
}

// Categories 当前分类集合（副本）
func (f *QuestionForm) Categories() domain.Categories {
	return append(domain.Categories{}, f.categories...)
}

// SetCategories 整体替换分类集合
func (f *QuestionForm) SetCategories(cs ...domain.Category) {
	f.categories = domain.NewCategories(cs...)
}

// ToggleCategory 勾选/取消一个分类
func (f *QuestionForm) ToggleCategory(c domain.Category) {
	if f.categories.Contains(c) {
		f.categories = f.categories.Without(c)
		return
	}
	f.categories = f.categories.With(c)
}

// Logo 题目 logo
func (f *QuestionForm) Logo() *attachment.Manager { return f.logo }

// Answers 答案快照列表（副本）
func (f *QuestionForm) Answers() []AnswerEntry {
	return append([]AnswerEntry(nil), f.answers...)
}

// Answer 第 i 行答案
func (f *QuestionForm) Answer(i int) (AnswerEntry, error) {
	if i < 0 || i >= len(f.answers) {
		return AnswerEntry{}, errors.Wrapf(ErrAnswerIndex, "%d", i)
	}
	return f.answers[i], nil
}

// AddAnswer 追加一行空答案，返回行号
func (f *QuestionForm) AddAnswer() int {
	f.answers = append(f.answers, NewAnswerEntry(f.previewer))
	return len(f.answers) - 1
}

// UpdateAnswer 更新第 i 行的一个字段
func (f *QuestionForm) UpdateAnswer(i int, field, value string) error {
	cur, err := f.Answer(i)
	if err != nil {
		return err
	}
	next, err := cur.Update(field, value)
	if err != nil {
		return err
	}
	f.answers[i] = next
	return nil
}

// SelectAnswerLogo 为第 i 行选择 logo 文件
func (f *QuestionForm) SelectAnswerLogo(i int, b *attachment.Binary) error {
	cur, err := f.Answer(i)
	if err != nil {
		return err
	}
	return cur.SelectLogo(b)
}

// ResolveAnswer 按 id 标记答案已结算
func (f *QuestionForm) ResolveAnswer(id string, outcome domain.Outcome) error {
	for i, a := range f.answers {
		if a.ID != id {
			continue
		}
		next, err := a.Resolve(outcome)
		if err != nil {
			return err
		}
		f.answers[i] = next
		return nil
	}
	return errors.Errorf("answer %s not in form", id)
}

// RemoveAnswer 删除第 i 行并压缩列表；只删除错误映射中 key 为 i 的条目，
// 更大的 key 不重新编号。已结算的行不能删除
func (f *QuestionForm) RemoveAnswer(i int) error {
	cur, err := f.Answer(i)
	if err != nil {
		return err
	}
	if cur.Resolved {
		return ErrAnswerResolved
	}
	cur.release()
	f.answers = append(f.answers[:i:i], f.answers[i+1:]...)
	f.errs.DropAnswer(i)
	return nil
}

// Hydrate 用服务端题目回填（编辑模式，只允许一次）
func (f *QuestionForm) Hydrate(q domain.Question) error {
	if f.hydrated {
		return ErrAlreadyHydrated
	}
	f.releaseAll()

	f.id = q.ID
	f.text = map[string]string{
		FieldQuestionName:  q.QuestionName,
		FieldDescription:   q.Description,
		FieldSubCategory:   q.SubCategory,
		FieldGroupQuestion: q.GroupQuestion,
		FieldSymbol:        q.Symbol,
		FieldEPS:           q.EPS,
		FieldRuleMarket:    q.RuleMarket,
		FieldTags:          domain.JoinTags(q.Tags),
		FieldTimeEnd:       domain.FormatTimeEnd(q.TimeEnd),
	}
	f.marketType = q.MarketType
	if f.marketType == "" {
		f.marketType = domain.MarketTypeAll
	}
	f.volume = q.Volume
	f.categories = domain.NewCategories(q.Categories...)
	f.logo = attachment.NewManager(f.previewer, q.LogoURL)
	f.answers = make([]AnswerEntry, 0, len(q.Answers))
	for _, a := range q.Answers {
		f.answers = append(f.answers, AnswerEntryFrom(f.previewer, a))
	}
	f.errs = validation.NewErrors()
	f.hydrated = true
	return nil
}

// Snapshot 校验用快照
func (f *QuestionForm) Snapshot() validation.Question {
	answers := make([]validation.Answer, len(f.answers))
	for i, a := range f.answers {
		answers[i] = a.Snapshot()
	}
	return validation.Question{
		Categories:   f.Categories(),
		QuestionName: f.text[FieldQuestionName],
		TimeEnd:      strings.TrimSpace(f.text[FieldTimeEnd]),
		RuleMarket:   f.text[FieldRuleMarket],
		Volume:       f.volume,
		HasLogo:      f.logo.HasImage(),
		EPS:          f.text[FieldEPS],
		Symbol:       f.text[FieldSymbol],
		Answers:      answers,
	}
}

// Validate 运行本地校验并保存错误映射；返回是否通过
func (f *QuestionForm) Validate() bool {
	f.errs = validation.ValidateQuestion(f.Snapshot())
	return f.errs.Empty()
}

// Errors 当前错误映射
func (f *QuestionForm) Errors() *validation.Errors { return f.errs }

// MergeErrors 合并服务端返回的错误
func (f *QuestionForm) MergeErrors(e *validation.Errors) {
	f.errs.Merge(e)
}

// SetError 设置一条题目级错误（例如输入无法解析）
func (f *QuestionForm) SetError(field, msg string) {
	f.errs.Set(field, msg)
}

// Reset 恢复为空白表单，释放所有附件
func (f *QuestionForm) Reset() {
	f.releaseAll()
	f.reset()
}

// Close 拥有者销毁时释放所有附件
func (f *QuestionForm) Close() {
	f.releaseAll()
}

func (f *QuestionForm) releaseAll() {
	if f.logo != nil {
		f.logo.Release()
	}
	for _, a := range f.answers {
		a.release()
	}
}
