package submission

import (
	"github.com/betbot/marketadmin/internal/domain"
	"github.com/betbot/marketadmin/internal/validation"
)

// Mode 提交模式
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Status 提交结果
type Status int

const (
	// StatusInvalid 本地校验未通过，没有发请求
	StatusInvalid Status = iota
	// StatusSucceeded 服务端接受
	StatusSucceeded
	// StatusRejected 服务端返回了错误映射或 error
	StatusRejected
	// StatusFailed 传输失败（网络错误、非 2xx）
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	}
	return "invalid"
}

// 提示文案
const (
	MsgInvalid       = "Please fix the highlighted fields"
	MsgCreated       = "Question created"
	MsgUpdated       = "Question updated"
	MsgAnswerUpdated = "Answer updated"
	MsgResolved      = "Answer resolved"
	MsgRejected      = "Submit failed"
	MsgFailed        = "Error submitting"
	MsgAlreadyDone   = "Answer already resolved"
)

// Result 一次提交的结构化结果，由展示层决定如何呈现
type Result struct {
	Status  Status
	Message string
	// Errors 本地或服务端错误（Invalid/Rejected 时非空）
	Errors *validation.Errors
	// Question 服务端返回的题目（如果有）
	Question *domain.Question
	// Err 传输层错误（Failed 时）
	Err error
}

// OK 是否成功
func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}
