package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimeEndLayouts 可接受的截止时间格式；datetime-local 是浏览器表单提交的格式
var TimeEndLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimeEnd 解析截止时间；不带时区的格式按 UTC 处理
func ParseTimeEnd(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range TimeEndLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// FormatTimeEnd 格式化为浏览器 datetime-local 输入框可回填的格式
func FormatTimeEnd(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04")
}

// NormalizeTags 逗号分隔的标签 -> 去空白、去空、去重（保留首次出现顺序）
func NormalizeTags(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// JoinTags 标签集合的线上格式
func JoinTags(tags []string) string {
	return strings.Join(NormalizeTags(strings.Join(tags, ",")), ",")
}

// Answer 已持久化的答案
type Answer struct {
	ID         string          `json:"id"`
	Answer     string          `json:"answer"`
	AnswerName string          `json:"answerName"`
	LogoURL    string          `json:"logoUrl,omitempty"`
	Yes        decimal.Decimal `json:"yes"`
	No         decimal.Decimal `json:"no"`
	M          decimal.Decimal `json:"m"`
	PriceCheck decimal.Decimal `json:"priceCheck"`
	Volume     decimal.Decimal `json:"volume"`
	Resolved   bool            `json:"resolved"`
	Outcome    string          `json:"outcome,omitempty"`
}

// Question 已持久化的题目（API 返回的形状）
type Question struct {
	ID            string
	Categories    Categories
	QuestionName  string
	Description   string
	SubCategory   string
	GroupQuestion string
	Symbol        string
	EPS           string
	RuleMarket    string
	Tags          []string
	MarketType    MarketType
	TimeEnd       time.Time
	Volume        decimal.Decimal
	LogoURL       string
	Answers       []Answer
}

// HasCategory 题目是否属于某分类
func (q *Question) HasCategory(c Category) bool {
	return q.Categories.Contains(c)
}

// questionWire 服务端历史上字段形状不统一：
// category 可能是字符串或数组，tags 可能是逗号串或数组，logo 地址可能叫 logo 或 logoUrl
type questionWire struct {
	ID            string          `json:"id"`
	Category      json.RawMessage `json:"category"`
	Categories    json.RawMessage `json:"categories"`
	QuestionName  string          `json:"questionName"`
	Question      string          `json:"question"`
	Description   string          `json:"description"`
	SubCategory   string          `json:"subCategory"`
	GroupQuestion string          `json:"groupQuestion"`
	Symbol        string          `json:"symbol"`
	EPS           json.RawMessage `json:"eps"`
	RuleMarket    string          `json:"ruleMarket"`
	Tags          json.RawMessage `json:"tags"`
	MarketType    string          `json:"marketType"`
	TimeEnd       string          `json:"timeEnd"`
	Volume        decimal.Decimal `json:"volume"`
	LogoURL       string          `json:"logoUrl"`
	Logo          json.RawMessage `json:"logo"`
	Answers       []Answer        `json:"answers"`
}

// UnmarshalJSON 兼容各版本服务端的字段形状
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	raw := w.Category
	if len(raw) == 0 || string(raw) == "null" {
		raw = w.Categories
	}
	cats, err := stringOrList(raw)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}
	parsed := make([]Category, 0, len(cats))
	for _, c := range cats {
		if pc, err := ParseCategory(c); err == nil {
			parsed = append(parsed, pc)
		}
	}

	tags, err := stringOrList(w.Tags)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}

	mt, err := ParseMarketType(w.MarketType)
	if err != nil {
		mt = MarketTypeAll
	}

	var timeEnd time.Time
	if strings.TrimSpace(w.TimeEnd) != "" {
		if timeEnd, err = ParseTimeEnd(w.TimeEnd); err != nil {
			return fmt.Errorf("timeEnd: %w", err)
		}
	}

	name := w.QuestionName
	if name == "" {
		name = w.Question
	}
	logo := w.LogoURL
	if logo == "" {
		logo = stringOrEmpty(w.Logo)
	}

	*q = Question{
		ID:            w.ID,
		Categories:    NewCategories(parsed...),
		QuestionName:  name,
		Description:   w.Description,
		SubCategory:   w.SubCategory,
		GroupQuestion: w.GroupQuestion,
		Symbol:        w.Symbol,
		EPS:           scalarString(w.EPS),
		RuleMarket:    w.RuleMarket,
		Tags:          NormalizeTags(strings.Join(tags, ",")),
		MarketType:    mt,
		TimeEnd:       timeEnd,
		Volume:        w.Volume,
		LogoURL:       logo,
		Answers:       w.Answers,
	}
	return nil
}

// MarshalJSON 输出规范形状（category 数组、tags 逗号串）
func (q Question) MarshalJSON() ([]byte, error) {
	var timeEnd string
	if !q.TimeEnd.IsZero() {
		timeEnd = q.TimeEnd.UTC().Format(time.RFC3339)
	}
	return json.Marshal(struct {
		ID            string          `json:"id,omitempty"`
		Category      []string        `json:"category"`
		QuestionName  string          `json:"questionName"`
		Description   string          `json:"description,omitempty"`
		SubCategory   string          `json:"subCategory"`
		GroupQuestion string          `json:"groupQuestion"`
		Symbol        string          `json:"symbol"`
		EPS           string          `json:"eps"`
		RuleMarket    string          `json:"ruleMarket"`
		Tags          string          `json:"tags"`
		MarketType    MarketType      `json:"marketType"`
		TimeEnd       string          `json:"timeEnd"`
		Volume        decimal.Decimal `json:"volume"`
		LogoURL       string          `json:"logoUrl,omitempty"`
		Answers       []Answer        `json:"answers"`
	}{
		ID:            q.ID,
		Category:      q.Categories.Strings(),
		QuestionName:  q.QuestionName,
		Description:   q.Description,
		SubCategory:   q.SubCategory,
		GroupQuestion: q.GroupQuestion,
		Symbol:        q.Symbol,
		EPS:           q.EPS,
		RuleMarket:    q.RuleMarket,
		Tags:          JoinTags(q.Tags),
		MarketType:    q.MarketType,
		TimeEnd:       timeEnd,
		Volume:        q.Volume,
		LogoURL:       q.LogoURL,
		Answers:       q.Answers,
	})
}

// stringOrList 解析 "a,b" / ["a","b"] / null
func stringOrList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	// 数组被 JSON 编码成字符串的情况
	if strings.HasPrefix(strings.TrimSpace(s), "[") {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list, nil
		}
	}
	return strings.Split(s, ","), nil
}

func stringOrEmpty(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// scalarString eps 在部分接口里是数字
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
