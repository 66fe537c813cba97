package metrics

import "expvar"

// 按结果状态计数（key 为 submission.Status 的字符串）
var (
	Submissions = expvar.NewMap("question_submissions")
	AnswerSaves = expvar.NewMap("answer_saves")
	Resolves    = expvar.NewMap("answer_resolves")
	DraftsSwept = expvar.NewInt("drafts_swept")
)
