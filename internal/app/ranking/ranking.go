// Package ranking turns a snapshot of accounts into an ordered,
// filtered leaderboard. Everything here is pure and in-memory; callers
// re-run Compute from scratch whenever the snapshot changes, since a
// single award can reorder the board non-locally.
package ranking

import (
	"sort"
	"strings"
	"time"

	"github.com/gamifystation/pointsboard/internal/app/system/normalize"
	"github.com/gamifystation/pointsboard/internal/domain/models"
)

// Period selectors. Anything else is treated as all-time.
const (
	PeriodAllTime = "all"
	PeriodToday   = "today"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// podiumSize is how many leaders are surfaced separately from the flat
// list.
const podiumSize = 3

// Filters narrows and scopes a leaderboard computation. Zero values
// mean "no filter"; malformed role/department/period values degrade to
// no filter rather than erroring.
type Filters struct {
	Search     string // case-insensitive contains on name
	Role       string // "" or "All" disables
	Department string // "" or "All" disables
	Period     string // "", "all", "today", "weekly", "monthly"

	Start    int       // offset into the flat list, for paging
	PageSize int       // 0 disables truncation
	Now      time.Time // zero means time.Now(); pinned in tests
}

// Entry is one ranked account.
type Entry struct {
	UserID          string `json:"user_id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Department      string `json:"department,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Score           int    `json:"score"`
	Rank            int    `json:"rank"`
}

// Board is a computed leaderboard: the podium, a page of the remainder,
// and how many ranked accounts fall below the page.
type Board struct {
	Period    string  `json:"period"`
	Podium    []Entry `json:"podium"`
	Entries   []Entry `json:"entries"`
	Remaining int     `json:"remaining"`
	Total     int     `json:"total"`
}

// Compute filters, scores, and ranks the given accounts. The input
// order is the tie-break: accounts with equal scores keep their
// relative order, so a created_at-ascending snapshot resolves ties to
// the longer-standing account. Compute never mutates its input and is
// deterministic for a fixed Filters.Now.
func Compute(accounts []models.User, f Filters) Board {
	period := normalizePeriod(f.Period)
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	windowStart, windowed := periodStart(period, now)

	search := strings.ToLower(strings.TrimSpace(f.Search))
	role := normalizeSelector(normalize.Role(f.Role))
	department := normalizeSelector(strings.TrimSpace(f.Department))

	entries := make([]Entry, 0, len(accounts))
	for _, a := range accounts {
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) {
			continue
		}
		if role != "" && a.Role != role {
			continue
		}
		if department != "" && a.Department != department {
			continue
		}

		score := a.TotalPoints
		if windowed {
			score = windowScore(a.Transactions, windowStart, now)
		}
		entries = append(entries, Entry{
			UserID:          a.ID.Hex(),
			Name:            a.Name,
			Role:            a.Role,
			Department:      a.Department,
			ProfileImageURL: a.ProfileImageURL,
			Score:           score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	board := Board{Period: period, Total: len(entries)}

	split := podiumSize
	if split > len(entries) {
		split = len(entries)
	}
	board.Podium = entries[:split]

	rest := entries[split:]
	start := f.Start
	if start < 0 {
		start = 0
	}
	if start > len(rest) {
		start = len(rest)
	}
	page := rest[start:]
	if f.PageSize > 0 && len(page) > f.PageSize {
		page = page[:f.PageSize]
	}
	board.Entries = page
	board.Remaining = len(rest) - start - len(page)

	return board
}

// normalizePeriod maps unknown selectors to all-time.
func normalizePeriod(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PeriodToday:
		return PeriodToday
	case PeriodWeekly:
		return PeriodWeekly
	case PeriodMonthly:
		return PeriodMonthly
	default:
		return PeriodAllTime
	}
}

// periodStart returns the window's opening instant. Today opens at the
// local midnight before now; weekly and monthly are rolling 7- and
// 30-day windows.
func periodStart(period string, now time.Time) (time.Time, bool) {
	switch period {
	case PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case PeriodWeekly:
		return now.AddDate(0, 0, -7), true
	case PeriodMonthly:
		return now.AddDate(0, 0, -30), true
	default:
		return time.Time{}, false
	}
}

func windowScore(txns []models.Transaction, start, now time.Time) int {
	score := 0
	for _, t := range txns {
		if t.Timestamp.Before(start) || t.Timestamp.After(now) {
			continue
		}
		score += t.Points
	}
	return score
}

// normalizeSelector treats "" and "All" (any case) as no filter.
func normalizeSelector(v string) string {
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
