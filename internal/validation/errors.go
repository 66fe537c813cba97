package validation

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Errors 字段 -> 错误信息映射；本地校验与服务端返回的错误共用同一形状
type Errors struct {
	Fields  map[string]string
	Answers map[int]map[string]string // 行号 -> 字段 -> 信息（稀疏）
}

// NewErrors 创建空映射
func NewErrors() *Errors {
	return &Errors{
		Fields:  map[string]string{},
		Answers: map[int]map[string]string{},
	}
}

// Empty 没有任何错误
func (e *Errors) Empty() bool {
	if e == nil {
		return true
	}
	if len(e.Fields) > 0 {
		return false
	}
	for _, row := range e.Answers {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// Set 设置题目级错误
func (e *Errors) Set(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// Field 获取题目级错误
func (e *Errors) Field(field string) string {
	if e == nil {
		return ""
	}
	return e.Fields[field]
}

// SetAnswer 设置某行答案的错误
func (e *Errors) SetAnswer(index int, field, msg string) {
	if e.Answers == nil {
		e.Answers = map[int]map[string]string{}
	}
	row := e.Answers[index]
	if row == nil {
		row = map[string]string{}
		e.Answers[index] = row
	}
	row[field] = msg
}

// Answer 某行答案的错误（无错误时返回 nil）
func (e *Errors) Answer(index int) map[string]string {
	if e == nil {
		return nil
	}
	return e.Answers[index]
}

// AnswerIndexes 有错误的行号（升序）
func (e *Errors) AnswerIndexes() []int {
	if e == nil {
		return nil
	}
	out := make([]int, 0, len(e.Answers))
	for i, row := range e.Answers {
		if len(row) > 0 {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// DropAnswer 删除某行的错误；更高行号的错误不重新编号
func (e *Errors) DropAnswer(index int) {
	if e == nil {
		return
	}
	delete(e.Answers, index)
}

// Merge 合并另一份映射，同名字段以 other 为准
func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	for k, v := range other.Fields {
		e.Set(k, v)
	}
	for i, row := range other.Answers {
		for k, v := range row {
			e.SetAnswer(i, k, v)
		}
	}
}

// Clone 深拷贝
func (e *Errors) Clone() *Errors {
	out := NewErrors()
	out.Merge(e)
	return out
}

// MarshalJSON {"field": "...", "answers": {"0": {...}}}
func (e *Errors) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		m[k] = v
	}
	if idx := e.AnswerIndexes(); len(idx) > 0 {
		answers := make(map[string]map[string]string, len(idx))
		for _, i := range idx {
			answers[strconv.Itoa(i)] = e.Answers[i]
		}
		m["answers"] = answers
	}
	return json.Marshal(m)
}

// UnmarshalJSON 兼容 answers 为对象（按下标为 key）或数组（null 元素跳过）两种形状；
// 非字符串的题目级字段被忽略
func (e *Errors) UnmarshalJSON(data []byte) error {
	*e = *NewErrors()
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// 部分接口 errors 直接是一条字符串
		var msg string
		if json.Unmarshal(data, &msg) != nil {
			return err
		}
		if msg != "" {
			e.Fields["error"] = msg
		}
		return nil
	}
	for k, v := range raw {
		if k == "answers" {
			if err := e.decodeAnswers(v); err != nil {
				return err
			}
			continue
		}
		var msg string
		if err := json.Unmarshal(v, &msg); err == nil && msg != "" {
			e.Fields[k] = msg
		}
	}
	return nil
}

func (e *Errors) decodeAnswers(raw json.RawMessage) error {
	var byKey map[string]map[string]string
	if err := json.Unmarshal(raw, &byKey); err == nil {
		for k, row := range byKey {
			i, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			for f, msg := range row {
				e.SetAnswer(i, f, msg)
			}
		}
		return nil
	}
	var list []map[string]string
	if err := json.Unmarshal(raw, &list); err == nil {
		for i, row := range list {
			for f, msg := range row {
				e.SetAnswer(i, f, msg)
			}
		}
		return nil
	}
	// answers 也可能是一条题目级信息
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		e.Fields["answers"] = msg
	}
	return nil
}
