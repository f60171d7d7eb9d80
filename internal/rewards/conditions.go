package rewards

import (
	"strconv"
	"strings"

	"github.com/marketing-hub/autowebinar/internal/models"
)

// ConditionType names the session attribute a claim condition inspects.
type ConditionType = models.RewardConditionType

const (
	CondWatchTime    ConditionType = "watch_time"    // percent of video watched
	CondOfferClicked ConditionType = "offer_clicked" // bool
	CondEngagement   ConditionType = "engagement"    // score 0-100
	CondKeyword      ConditionType = "keyword"       // typed keyword history
)

// Operator compares a session attribute against a condition value.
type Operator = models.RewardConditionOperator

const (
	OpGTE      Operator = "gte"
	OpLTE      Operator = "lte"
	OpEQ       Operator = "eq"
	OpNE       Operator = "ne"
	OpContains Operator = "contains"
)

// Condition is one claim predicate over a watch session.
type Condition = models.RewardCondition

// ValidCondition checks a condition's type and operator before it is stored.
func ValidCondition(c Condition) bool {
	switch c.Type {
	case CondWatchTime, CondOfferClicked, CondEngagement, CondKeyword:
	default:
		return false
	}
	switch c.Op {
	case OpGTE, OpLTE, OpEQ, OpNE, OpContains:
		return true
	default:
		return false
	}
}

// SessionView is the snapshot of a watch session that conditions evaluate
// against.
type SessionView struct {
	MaxWatchedSeconds    int
	VideoDurationSeconds int
	OfferClicked         bool
	EngagementScore      float64
	TypedKeywords        []string
}

// Evaluate runs all conditions against the session. With "AND" every condition
// must hold; with "OR" one suffices. No conditions evaluates to true.
func Evaluate(view SessionView, conditions []Condition, logicalOperator string) bool {
	if len(conditions) == 0 {
		return true
	}
	or := strings.EqualFold(logicalOperator, "OR")
	for _, c := range conditions {
		ok := evaluateOne(view, c)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func evaluateOne(view SessionView, c Condition) bool {
	switch c.Type {
	case CondWatchTime:
		if view.VideoDurationSeconds <= 0 {
			return false
		}
		pct := float64(view.MaxWatchedSeconds) / float64(view.VideoDurationSeconds) * 100
		return compareNumber(pct, c.Op, c.Value)
	case CondOfferClicked:
		want := strings.EqualFold(strings.TrimSpace(c.Value), "true")
		switch c.Op {
		case OpNE:
			return view.OfferClicked != want
		default:
			return view.OfferClicked == want
		}
	case CondEngagement:
		return compareNumber(view.EngagementScore, c.Op, c.Value)
	case CondKeyword:
		needle := strings.ToLower(strings.TrimSpace(c.Value))
		for _, k := range view.TypedKeywords {
			if strings.Contains(strings.ToLower(k), needle) {
				return c.Op != OpNE
			}
		}
		return c.Op == OpNE
	default:
		return false
	}
}

func compareNumber(actual float64, op Operator, value string) bool {
	want, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	switch op {
	case OpGTE:
		return actual >= want
	case OpLTE:
		return actual <= want
	case OpEQ:
		return actual == want
	case OpNE:
		return actual != want
	default:
		return false
	}
}
