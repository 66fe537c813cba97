package domain

import (
	"fmt"
	"strings"
)

// Category 题目分类（封闭词表）
type Category string

const (
	CategoryCrypto      Category = "CRYPTO"
	CategoryCulture     Category = "CULTURE"
	CategoryEarnings    Category = "EARNINGS"
	CategoryEconomy     Category = "ECONOMY"
	CategoryElections   Category = "ELECTIONS"
	CategoryFinance     Category = "FINANCE"
	CategoryGeopolitics Category = "GEOPOLITICS"
	CategoryMentions    Category = "MENTIONS"
	CategoryPolitics    Category = "POLITICS"
	CategorySports      Category = "SPORTS"
	CategoryTech        Category = "TECH"
	CategoryWorld       Category = "WORLD"
)

// AllCategories 词表顺序，也是输出顺序
var AllCategories = []Category{
	CategoryCrypto,
	CategoryCulture,
	CategoryEarnings,
	CategoryEconomy,
	CategoryElections,
	CategoryFinance,
	CategoryGeopolitics,
	CategoryMentions,
	CategoryPolitics,
	CategorySports,
	CategoryTech,
	CategoryWorld,
}

// ParseCategory 解析分类（大小写不敏感）
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Categories 分类集合；始终按词表顺序、无重复
type Categories []Category

// NewCategories 去重并按词表顺序排列，未知值被丢弃
func NewCategories(cs ...Category) Categories {
	seen := make(map[Category]bool, len(cs))
	for _, c := range cs {
		seen[c] = true
	}
	out := make(Categories, 0, len(seen))
	for _, known := range AllCategories {
		if seen[known] {
			out = append(out, known)
		}
	}
	return out
}

// Contains 是否包含某分类
func (cs Categories) Contains(c Category) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

// With 返回加入 c 后的新集合
func (cs Categories) With(c Category) Categories {
	return NewCategories(append(append(Categories{}, cs...), c)...)
}

// Without 返回去掉 c 后的新集合
func (cs Categories) Without(c Category) Categories {
	out := make(Categories, 0, len(cs))
	for _, x := range cs {
		if x != c {
			out = append(out, x)
		}
	}
	return out
}

// Strings 转成字符串切片（序列化用）
func (cs Categories) Strings() []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// MarketType 市场周期类型
type MarketType string

const (
	MarketTypeAll       MarketType = "ALL"
	MarketType15M       MarketType = "15M"
	MarketTypeHourly    MarketType = "HOURLY"
	MarketType4Hour     MarketType = "4HOUR"
	MarketTypeDaily     MarketType = "DAILY"
	MarketTypeWeekly    MarketType = "WEEKLY"
	MarketTypeMonthly   MarketType = "MONTHLY"
	MarketTypeAnnual    MarketType = "ANNUAL"
	MarketTypePreMarket MarketType = "PRE_MARKET"
)

var AllMarketTypes = []MarketType{
	MarketTypeAll,
	MarketType15M,
	MarketTypeHourly,
	MarketType4Hour,
	MarketTypeDaily,
	MarketTypeWeekly,
	MarketTypeMonthly,
	MarketTypeAnnual,
	MarketTypePreMarket,
}

// ParseMarketType 解析市场类型，空字符串返回默认值 ALL
func ParseMarketType(s string) (MarketType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return MarketTypeAll, nil
	}
	for _, known := range AllMarketTypes {
		if MarketType(s) == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown market type %q", s)
}

// Outcome 答案结算结果
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// ParseOutcome 解析结算结果
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(strings.ToUpper(strings.TrimSpace(s))) {
	case OutcomeYes:
		return OutcomeYes, nil
	case OutcomeNo:
		return OutcomeNo, nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}
