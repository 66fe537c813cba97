package submission

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/betbot/marketadmin/internal/attachment"
	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/form"
	"github.com/betbot/marketadmin/internal/questionapi"
	sdkhttp "github.com/betbot/marketadmin/pkg/sdk/http"
	"github.com/shopspring/decimal"
)

// multipart 字段名
const (
	PartCategory      = "category"
	PartSubCategory   = "subCategory"
	PartQuestionName  = "questionName"
	PartDescription   = "description"
	PartRuleMarket    = "ruleMarket"
	PartTimeEnd       = "timeEnd"
	PartMarketType    = "marketType"
	PartSymbol        = "symbol"
	PartGroupQuestion = "groupQuestion"
	PartEPS           = "eps"
	PartVolume        = "volume"
	PartTags          = "tags"
	PartLogo          = "logo"
	PartAnswers       = "answers"
	PartAnswerLogos   = "answerLogos"
	PartQuestionID    = "questionId"
	PartAnswer        = "answer"
)

// AnswerRecord answers 数组中的一条记录；LogoIndex 指向 answerLogos 中的文件，-1 表示没有新文件
type AnswerRecord struct {
	ID         string      `json:"id,omitempty"`
	Answer     string      `json:"answer"`
	AnswerName string      `json:"answerName"`
	Yes        json.Number `json:"yes"`
	No         json.Number `json:"no"`
	M          json.Number `json:"m"`
	PriceCheck json.Number `json:"priceCheck"`
	Volume     json.Number `json:"volume"`
	LogoURL    string      `json:"logoUrl,omitempty"`
	LogoIndex  int         `json:"logoIndex"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// NewAnswerRecord 由表单行构造记录
func NewAnswerRecord(e form.AnswerEntry, logoIndex int) AnswerRecord {
	rec := AnswerRecord{
		ID:         e.ID,
		Answer:     strings.TrimSpace(e.Answer),
		AnswerName: strings.TrimSpace(e.AnswerName),
		Yes:        number(e.Yes),
		No:         number(e.No),
		M:          number(e.M),
		PriceCheck: number(e.PriceCheck),
		Volume:     number(e.Volume),
		LogoIndex:  logoIndex,
	}
	if e.Logo != nil {
		rec.LogoURL = e.Logo.PersistedURL()
	}
	return rec
}

func fileOf(param string, b *attachment.Binary) sdkhttp.File {
	return sdkhttp.File{
		Param:       param,
		FileName:    b.Name,
		ContentType: b.ContentType,
		Reader:      b.Reader(),
	}
}

// EncodeQuestion 把表单序列化为 multipart 请求体（唯一的序列化入口）
func EncodeQuestion(f *form.QuestionForm, mode Mode) (*questionapi.Payload, error) {
	p := questionapi.NewPayload()

	cats, err := json.Marshal(f.Categories().Strings())
	if err != nil {
		return nil, err
	}
	p.Set(PartCategory, string(cats))
	p.Set(PartSubCategory, strings.TrimSpace(f.Field(form.FieldSubCategory)))
	p.Set(PartQuestionName, strings.TrimSpace(f.Field(form.FieldQuestionName)))
	if d := strings.TrimSpace(f.Field(form.FieldDescription)); d != "" {
		p.Set(PartDescription, d)
	}
	p.Set(PartRuleMarket, strings.TrimSpace(f.Field(form.FieldRuleMarket)))

	timeEnd, err := domain.ParseTimeEnd(f.Field(form.FieldTimeEnd))
	if err != nil {
		return nil, err
	}
	p.Set(PartTimeEnd, timeEnd.UTC().Format(time.RFC3339))
	p.Set(PartMarketType, string(f.MarketType()))
	p.Set(PartSymbol, strings.TrimSpace(f.Field(form.FieldSymbol)))
	p.Set(PartGroupQuestion, strings.TrimSpace(f.Field(form.FieldGroupQuestion)))
	p.Set(PartEPS, strings.TrimSpace(f.Field(form.FieldEPS)))
	p.Set(PartVolume, f.Volume().String())
	p.Set(PartTags, domain.JoinTags(f.Tags()))

	if b := f.Logo().Pending(); b != nil {
		p.AddFile(fileOf(PartLogo, b))
	}

	answers := f.Answers()
	records := make([]AnswerRecord, 0, len(answers))
	next := 0
	for _, a := range answers {
		idx := -1
		if a.Logo != nil && a.Logo.Pending() != nil {
			idx = next
			next++
			p.AddFile(fileOf(PartAnswerLogos, a.Logo.Pending()))
		}
		records = append(records, NewAnswerRecord(a, idx))
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	p.Set(PartAnswers, string(raw))

	if mode == ModeEdit {
		p.Set(PartQuestionID, f.ID())
	}
	return p, nil
}

// EncodeAnswer 单个答案的 multipart 请求体：answer 为 JSON 记录，logo 可选
func EncodeAnswer(e form.AnswerEntry) (*questionapi.Payload, error) {
	p := questionapi.NewPayload()
	idx := -1
	if e.Logo != nil && e.Logo.Pending() != nil {
		idx = 0
		p.AddFile(fileOf(PartLogo, e.Logo.Pending()))
	}
	raw, err := json.Marshal(NewAnswerRecord(e, idx))
	if err != nil {
		return nil, err
	}
	p.Set(PartAnswer, string(raw))
	return p, nil
}
