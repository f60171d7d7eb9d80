// Package rewards evaluates reward trigger conditions against a watch session
// and hands delivery off to external collaborators. The trigger checks are
// pure; delivery goes through the job queue to the worker.
package rewards

import (
	"strings"

	"github.com/google/uuid"

	"github.com/marketing-hub/autowebinar/internal/models"
)

func claimable(r models.Reward, claimed map[uuid.UUID]bool) bool {
	if !r.IsActive {
		return false
	}
	if claimed[r.ID] {
		return false
	}
	if r.MaxClaims != nil && r.CurrentClaims >= *r.MaxClaims {
		return false
	}
	return true
}

// CheckWatchTime returns rewards whose watch-time threshold the session has
// crossed and that are still claimable.
func CheckWatchTime(rewards []models.Reward, watchedSeconds int, claimed map[uuid.UUID]bool) []models.Reward {
	var out []models.Reward
	for _, r := range rewards {
		if r.TriggerType != models.TriggerWatchTime || !claimable(r, claimed) {
			continue
		}
		if r.WatchTimeSeconds == nil {
			continue
		}
		if watchedSeconds >= *r.WatchTimeSeconds {
			out = append(out, r)
		}
	}
	return out
}

// CheckKeyword returns the first claimable keyword reward matching the viewer
// input, or nil. Matching is case-insensitive on the trimmed input.
func CheckKeyword(rewards []models.Reward, input string, claimed map[uuid.UUID]bool) *models.Reward {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return nil
	}
	for i := range rewards {
		r := rewards[i]
		if r.TriggerType != models.TriggerKeyword || !claimable(r, claimed) {
			continue
		}
		for _, k := range r.TriggerKeywords {
			if strings.ToLower(strings.TrimSpace(k)) == normalized {
				return &r
			}
		}
	}
	return nil
}

// CheckTimedInput returns the claimable timed-input reward whose entry window
// contains currentSeconds, or nil. The window defaults to 60 seconds.
func CheckTimedInput(rewards []models.Reward, currentSeconds int, claimed map[uuid.UUID]bool) *models.Reward {
	for i := range rewards {
		r := rewards[i]
		if r.TriggerType != models.TriggerTimedInput || !claimable(r, claimed) {
			continue
		}
		if r.AppearAtSeconds == nil {
			continue
		}
		start := *r.AppearAtSeconds
		deadline := 60
		if r.InputDeadlineSeconds != nil {
			deadline = *r.InputDeadlineSeconds
		}
		if currentSeconds >= start && currentSeconds <= start+deadline {
			return &r
		}
	}
	return nil
}
