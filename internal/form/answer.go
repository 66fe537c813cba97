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
	// ErrAnswerResolved 已结算的答案只读
	ErrAnswerResolved = errors.New("answer already resolved")
	// ErrUnknownField 字段名不存在
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidNumber 数值字段无法解析
	ErrInvalidNumber = errors.New("invalid number")
)

// 答案字段名（与线上格式、错误 key 一致）
const (
	AnswerFieldAnswer     = "answer"
	AnswerFieldAnswerName = "answerName"
	AnswerFieldYes        = "yes"
	AnswerFieldNo         = "no"
	AnswerFieldM          = "m"
	AnswerFieldPriceCheck = "priceCheck"
	AnswerFieldVolume     = "volume"
)

// AnswerEntry 一行答案的不可变快照；修改返回新值，由列表整体替换
type AnswerEntry struct {
	ID         string
	Answer     string
	AnswerName string
	Yes        decimal.Decimal
	No         decimal.Decimal
	M          decimal.Decimal
	PriceCheck decimal.Decimal
	Volume     decimal.Decimal

	Resolved bool
	Outcome  domain.Outcome

	// Logo 由该行独占；快照之间共享同一个 Manager
	Logo *attachment.Manager
}

// NewAnswerEntry 空白行
func NewAnswerEntry(p attachment.Previewer) AnswerEntry {
	return AnswerEntry{Logo: attachment.NewManager(p, "")}
}

// AnswerEntryFrom 由已持久化记录构造（只有远程 logo 地址）
func AnswerEntryFrom(p attachment.Previewer, a domain.Answer) AnswerEntry {
	e := AnswerEntry{
		ID:         a.ID,
		Answer:     a.Answer,
		AnswerName: a.AnswerName,
		Yes:        a.Yes,
		No:         a.No,
		M:          a.M,
		PriceCheck: a.PriceCheck,
		Volume:     a.Volume,
		Resolved:   a.Resolved,
		Logo:       attachment.NewManager(p, a.LogoURL),
	}
	if o, err := domain.ParseOutcome(a.Outcome); err == nil {
		e.Outcome = o
	}
	return e
}

// Update 替换一个字段，返回新快照；原快照不变
func (e AnswerEntry) Update(field, value string) (AnswerEntry, error) {
	if e.Resolved {
		return e, ErrAnswerResolved
	}
	switch field {
	case AnswerFieldAnswer:
		e.Answer = value
		return e, nil
	case AnswerFieldAnswerName:
		e.AnswerName = value
		return e, nil
	}

	switch field {
	case AnswerFieldYes, AnswerFieldNo, AnswerFieldM, AnswerFieldPriceCheck, AnswerFieldVolume:
	default:
		return e, errors.Wrap(ErrUnknownField, field)
	}
	d, err := parseDecimal(value)
	if err != nil {
		return e, errors.Wrapf(err, "answer field %s", field)
	}
	switch field {
	case AnswerFieldYes:
		e.Yes = d
	case AnswerFieldNo:
		e.No = d
	case AnswerFieldM:
		e.M = d
	case AnswerFieldPriceCheck:
		e.PriceCheck = d
	case AnswerFieldVolume:
		e.Volume = d
	}
	return e, nil
}

// Resolve editable -> resolved（单向）
func (e AnswerEntry) Resolve(outcome domain.Outcome) (AnswerEntry, error) {
	if e.Resolved {
		return e, ErrAnswerResolved
	}
	e.Resolved = true
	e.Outcome = outcome
	return e, nil
}

// SelectLogo 选择本地 logo 文件
func (e AnswerEntry) SelectLogo(b *attachment.Binary) error {
	if e.Resolved {
		return ErrAnswerResolved
	}
	if e.Logo != nil {
		e.Logo.Select(b)
	}
	return nil
}

// Value 读取字段的文本形式（表单回填用）
func (e AnswerEntry) Value(field string) string {
	switch field {
	case AnswerFieldAnswer:
		return e.Answer
	case AnswerFieldAnswerName:
		return e.AnswerName
	case AnswerFieldYes:
		return e.Yes.String()
	case AnswerFieldNo:
		return e.No.String()
	case AnswerFieldM:
		return e.M.String()
	case AnswerFieldPriceCheck:
		return e.PriceCheck.String()
	case AnswerFieldVolume:
		return e.Volume.String()
	}
	return ""
}

// Snapshot 校验用快照
func (e AnswerEntry) Snapshot() validation.Answer {
	return validation.Answer{
		Answer:     e.Answer,
		AnswerName: e.AnswerName,
		Yes:        e.Yes,
		No:         e.No,
		M:          e.M,
		Volume:     e.Volume,
		PriceCheck: e.PriceCheck,
	}
}

// Validate 单行校验
func (e AnswerEntry) Validate() map[string]string {
	return validation.ValidateAnswer(e.Snapshot())
}

func (e AnswerEntry) release() {
	if e.Logo != nil {
		e.Logo.Release()
	}
}

// parseDecimal 空串视为 0
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrap(ErrInvalidNumber, s)
	}
	return d, nil
}
