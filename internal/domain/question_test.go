package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"btc", "eth"}, NormalizeTags(" btc, ,eth,btc "))
	assert.Empty(t, NormalizeTags(""))
	assert.Equal(t, "a,b", JoinTags([]string{"a", " b", "a", ""}))
}

func TestParseTimeEnd(t *testing.T) {
	got, err := ParseTimeEnd("2030-01-02T03:04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC), got)
	assert.Equal(t, "2030-01-02T03:04", FormatTimeEnd(got))

	_, err = ParseTimeEnd("2030-01-02T03:04:00Z")
	assert.NoError(t, err)

	_, err = ParseTimeEnd("tomorrow")
	assert.Error(t, err)
}

func TestCategories(t *testing.T) {
	cs := NewCategories(CategorySports, CategoryCrypto, CategorySports, "BOGUS")
	assert.Equal(t, Categories{CategoryCrypto, CategorySports}, cs)
	assert.True(t, cs.With(CategoryEarnings).Contains(CategoryEarnings))
	assert.Equal(t, Categories{CategorySports}, cs.Without(CategoryCrypto))

	c, err := ParseCategory("earnings")
	require.NoError(t, err)
	assert.Equal(t, CategoryEarnings, c)
	_, err = ParseCategory("nope")
	assert.Error(t, err)

	mt, err := ParseMarketType("")
	require.NoError(t, err)
	assert.Equal(t, MarketTypeAll, mt)

	o, err := ParseOutcome("no")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNo, o)
}

func TestQuestionUnmarshal(t *testing.T) {
	t.Run("array category and comma tags", func(t *testing.T) {
		raw := `{
			"id": "q1",
			"category": ["SPORTS", "EARNINGS"],
			"questionName": "Who wins?",
			"tags": "nba, finals",
			"marketType": "DAILY",
			"timeEnd": "2030-05-01T10:00:00Z",
			"volume": 12.5,
			"logo": "https://cdn/x.png",
			"eps": 0.42,
			"answers": [{"id": "a1", "answer": "A", "answerName": "Team A", "yes": 1, "no": "2", "m": 3, "resolved": true, "outcome": "YES"}]
		}`
		var q Question
		require.NoError(t, json.Unmarshal([]byte(raw), &q))
		assert.Equal(t, Categories{CategoryEarnings, CategorySports}, q.Categories)
		assert.Equal(t, []string{"nba", "finals"}, q.Tags)
		assert.Equal(t, MarketTypeDaily, q.MarketType)
		assert.Equal(t, "https://cdn/x.png", q.LogoURL)
		assert.Equal(t, "0.42", q.EPS)
		assert.Equal(t, "12.5", q.Volume.String())
		require.Len(t, q.Answers, 1)
		assert.Equal(t, "2", q.Answers[0].No.String())
		assert.True(t, q.Answers[0].Resolved)
	})

	t.Run("string category and json-encoded tag array", func(t *testing.T) {
		raw := `{"id": "q2", "category": "CRYPTO", "question": "BTC > 100k?", "tags": "[\"btc\",\"price\"]", "logoUrl": "u"}`
		var q Question
		require.NoError(t, json.Unmarshal([]byte(raw), &q))
		assert.Equal(t, Categories{CategoryCrypto}, q.Categories)
		assert.Equal(t, "BTC > 100k?", q.QuestionName)
		assert.Equal(t, []string{"btc", "price"}, q.Tags)
		assert.Equal(t, MarketTypeAll, q.MarketType)
		assert.Equal(t, "u", q.LogoURL)
	})

	t.Run("canonical output", func(t *testing.T) {
		q := Question{ID: "q3", Categories: Categories{CategoryTech}, Tags: []string{"ai", "chips"}, MarketType: MarketTypeAll}
		b, err := json.Marshal(q)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		assert.Equal(t, []any{"TECH"}, m["category"])
		assert.Equal(t, "ai,chips", m["tags"])
	})
}
