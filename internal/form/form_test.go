package form

import (
	"strings"
	"testing"
	"time"

	"github.com/betbot/marketadmin/internal/attachment"
	"github.com/betbot/marketadmin/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logo(t *testing.T, body string) *attachment.Binary {
	t.Helper()
	b, err := attachment.NewBinary("logo.png", "image/png", strings.NewReader(body))
	require.NoError(t, err)
	return b
}

func fillAnswer(t *testing.T, f *QuestionForm, i int) {
	t.Helper()
	require.NoError(t, f.UpdateAnswer(i, AnswerFieldAnswer, "A"))
	require.NoError(t, f.UpdateAnswer(i, AnswerFieldAnswerName, "Team A"))
	require.NoError(t, f.UpdateAnswer(i, AnswerFieldYes, "1"))
	require.NoError(t, f.UpdateAnswer(i, AnswerFieldNo, "1"))
	require.NoError(t, f.UpdateAnswer(i, AnswerFieldM, "2"))
}

// validForm 一份可以通过校验的表单
func validForm(t *testing.T, reg *attachment.Registry) *QuestionForm {
	t.Helper()
	f := New(reg)
	require.NoError(t, f.UpdateField(FieldQuestionName, "BTC above 100k?"))
	require.NoError(t, f.UpdateField(FieldTimeEnd, "2030-01-01T00:00"))
	require.NoError(t, f.UpdateField(FieldRuleMarket, "Coinbase close"))
	f.Logo().Select(logo(t, "L"))
	fillAnswer(t, f, 0)
	return f
}

func TestNew_Defaults(t *testing.T) {
	f := New(attachment.NewRegistry())
	assert.Equal(t, domain.Categories{domain.CategoryCrypto}, f.Categories())
	assert.Equal(t, domain.MarketTypeAll, f.MarketType())
	assert.Len(t, f.Answers(), 1)
	assert.Empty(t, f.ID())
}

func TestValidate_MissingRequired(t *testing.T) {
	f := validForm(t, attachment.NewRegistry())
	require.True(t, f.Validate())

	require.NoError(t, f.UpdateField(FieldQuestionName, ""))
	require.NoError(t, f.UpdateField(FieldTimeEnd, ""))
	require.NoError(t, f.UpdateField(FieldRuleMarket, " "))
	assert.False(t, f.Validate())

	keys := make([]string, 0)
	for k := range f.Errors().Fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{FieldQuestionName, FieldTimeEnd, FieldRuleMarket}, keys)
	// 校验不改动数据
	assert.Equal(t, "A", f.Answers()[0].Answer)
}

func TestValidate_EarningsToggle(t *testing.T) {
	f := validForm(t, attachment.NewRegistry())
	f.ToggleCategory(domain.CategoryEarnings)
	require.NoError(t, f.UpdateField(FieldEPS, "0"))
	assert.False(t, f.Validate())
	assert.Equal(t, "Eps is required", f.Errors().Field(FieldEPS))
	assert.Equal(t, "Symbol is required", f.Errors().Field(FieldSymbol))

	require.NoError(t, f.UpdateField(FieldEPS, "1.1"))
	require.NoError(t, f.UpdateField(FieldSymbol, "NVDA"))
	assert.True(t, f.Validate())

	f.ToggleCategory(domain.CategoryEarnings)
	assert.Equal(t, domain.Categories{domain.CategoryCrypto}, f.Categories())
}

func TestUpdateField_Errors(t *testing.T) {
	f := New(nil)
	assert.ErrorIs(t, f.UpdateField("bogus", "x"), ErrUnknownField)
	assert.ErrorIs(t, f.UpdateField(FieldVolume, "ten"), ErrInvalidNumber)
	assert.Error(t, f.UpdateField(FieldMarketType, "YEARLY"))

	require.NoError(t, f.UpdateField(FieldMarketType, "weekly"))
	assert.Equal(t, "WEEKLY", f.Field(FieldMarketType))
	require.NoError(t, f.UpdateField(FieldTags, "a, b,a"))
	assert.Equal(t, []string{"a", "b"}, f.Tags())
}

func TestAnswerEntry_UpdateIsCopy(t *testing.T) {
	e := NewAnswerEntry(nil)
	next, err := e.Update(AnswerFieldYes, "3")
	require.NoError(t, err)
	assert.True(t, e.Yes.IsZero())
	assert.True(t, next.Yes.Equal(decimal.NewFromInt(3)))

	_, err = e.Update("bogus", "1")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = e.Update("bogus", "abc")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.NotErrorIs(t, err, ErrInvalidNumber)
	_, err = e.Update(AnswerFieldNo, "abc")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestRemoveAnswer_ResolvedRowRejected(t *testing.T) {
	reg := attachment.NewRegistry()
	f := New(reg)
	require.NoError(t, f.Hydrate(domain.Question{
		ID:      "q1",
		Answers: []domain.Answer{{ID: "a1", Answer: "Y", Resolved: true, Outcome: "YES", LogoURL: "https://cdn/a.png"}},
	}))

	err := f.RemoveAnswer(0)
	assert.ErrorIs(t, err, ErrAnswerResolved)
	require.Len(t, f.Answers(), 1)
	assert.Equal(t, "a1", f.Answers()[0].ID)
}

func TestAnswerEntry_ResolvedIsImmutable(t *testing.T) {
	e, err := NewAnswerEntry(nil).Resolve(domain.OutcomeYes)
	require.NoError(t, err)
	assert.True(t, e.Resolved)
	assert.Equal(t, domain.OutcomeYes, e.Outcome)

	_, err = e.Update(AnswerFieldAnswer, "x")
	assert.ErrorIs(t, err, ErrAnswerResolved)
	_, err = e.Resolve(domain.OutcomeNo)
	assert.ErrorIs(t, err, ErrAnswerResolved)
	assert.ErrorIs(t, e.SelectLogo(nil), ErrAnswerResolved)
}

func TestRemoveAnswer_DoesNotRenumberErrors(t *testing.T) {
	f := validForm(t, attachment.NewRegistry())
	f.AddAnswer()
	f.AddAnswer()
	fillAnswer(t, f, 1)
	require.NoError(t, f.UpdateAnswer(1, AnswerFieldYes, "0"))
	require.NoError(t, f.UpdateAnswer(0, AnswerFieldNo, "0"))
	// 第 2 行整行空白
	require.False(t, f.Validate())
	require.Equal(t, []int{0, 1, 2}, f.Errors().AnswerIndexes())

	require.NoError(t, f.RemoveAnswer(1))
	assert.Len(t, f.Answers(), 2)
	assert.Equal(t, []int{0, 2}, f.Errors().AnswerIndexes())
	assert.Contains(t, f.Errors().Answer(2), AnswerFieldAnswer)

	assert.ErrorIs(t, f.RemoveAnswer(5), ErrAnswerIndex)
}

func TestRemoveAnswer_ReleasesLogo(t *testing.T) {
	reg := attachment.NewRegistry()
	f := New(reg)
	f.AddAnswer()
	require.NoError(t, f.SelectAnswerLogo(1, logo(t, "x")))
	a, err := f.Answer(1)
	require.NoError(t, err)
	require.NotEmpty(t, a.Logo.CurrentPreview())
	require.Equal(t, 1, reg.Live())

	require.NoError(t, f.RemoveAnswer(1))
	assert.Equal(t, 0, reg.Live())
}

func TestHydrate(t *testing.T) {
	reg := attachment.NewRegistry()
	f := New(reg)
	q := domain.Question{
		ID:           "q1",
		Categories:   domain.Categories{domain.CategoryEarnings},
		QuestionName: "NVDA beats?",
		Symbol:       "NVDA",
		EPS:          "0.8",
		RuleMarket:   "rules",
		Tags:         []string{"ai", "chips"},
		MarketType:   domain.MarketTypeDaily,
		TimeEnd:      time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC),
		LogoURL:      "https://cdn/q.png",
		Answers: []domain.Answer{
			{ID: "a1", Answer: "Y", AnswerName: "Yes", Yes: decimal.NewFromInt(1), No: decimal.NewFromInt(1), M: decimal.NewFromInt(1), LogoURL: "https://cdn/a.png"},
			{ID: "a2", Answer: "N", AnswerName: "No", Yes: decimal.NewFromInt(1), No: decimal.NewFromInt(1), M: decimal.NewFromInt(1), Resolved: true, Outcome: "NO"},
		},
	}
	require.NoError(t, f.Hydrate(q))
	assert.ErrorIs(t, f.Hydrate(q), ErrAlreadyHydrated)

	assert.Equal(t, "q1", f.ID())
	assert.Equal(t, "2030-01-02T03:04", f.Field(FieldTimeEnd))
	assert.Equal(t, "ai,chips", f.Field(FieldTags))
	assert.Equal(t, "https://cdn/q.png", f.Logo().CurrentPreview())
	answers := f.Answers()
	require.Len(t, answers, 2)
	assert.Nil(t, answers[0].Logo.Pending())
	assert.Equal(t, "https://cdn/a.png", answers[0].Logo.PersistedURL())
	assert.Equal(t, domain.OutcomeNo, answers[1].Outcome)

	// 已结算的行不能删除
	assert.ErrorIs(t, f.RemoveAnswer(1), ErrAnswerResolved)
	assert.Len(t, f.Answers(), 2)

	// 编辑时已有远程 logo 即满足 logo 必填
	assert.True(t, f.Validate())

	require.NoError(t, f.UpdateAnswer(0, AnswerFieldAnswer, "x"))
	require.NoError(t, f.ResolveAnswer("a1", domain.OutcomeYes))
	assert.ErrorIs(t, f.UpdateAnswer(0, AnswerFieldAnswer, "z"), ErrAnswerResolved)
}

func TestResetAndClose_ReleaseAttachments(t *testing.T) {
	reg := attachment.NewRegistry()
	f := validForm(t, reg)
	f.Logo().CurrentPreview()
	require.NoError(t, f.SelectAnswerLogo(0, logo(t, "a")))
	a, _ := f.Answer(0)
	a.Logo.CurrentPreview()
	require.Equal(t, 2, reg.Live())

	require.NoError(t, f.UpdateField(FieldVolume, "5"))
	f.SetError("error", "x")
	f.Reset()
	assert.Equal(t, 0, reg.Live())
	assert.Empty(t, f.Field(FieldQuestionName))
	assert.True(t, f.Volume().IsZero())
	assert.True(t, f.Errors().Empty())
	assert.Len(t, f.Answers(), 1)

	f.Logo().Select(logo(t, "again"))
	f.Logo().CurrentPreview()
	f.Close()
	f.Close()
	assert.Equal(t, 0, reg.Live())
	assert.EqualValues(t, reg.Allocated(), reg.Released())
}
