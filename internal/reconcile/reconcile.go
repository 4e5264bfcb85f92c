// Package reconcile derives each enquiry's current state from the
// follow-up event log and implements the list view's search, status
// filter and pagination over the result.
package reconcile

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/techskill-console/internal/models"
)

const day = 24 * time.Hour

// Reconciler merges enquiries with follow-ups. It holds no state besides
// the location used for zone-less dates, so calls are pure.
type Reconciler struct {
	loc *time.Location
}

// New returns a Reconciler reading zone-less dates in loc.
func New(loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{loc: loc}
}

// Location returns the reconciler's time zone.
func (r *Reconciler) Location() *time.Location {
	return r.loc
}

// Reconcile returns one enriched record per enquiry, in input order.
// Follow-ups pointing at unknown enquiries are ignored.
func (r *Reconciler) Reconcile(enquiries []models.Enquiry, followups []models.Followup, now time.Time) []models.ReconciledEnquiry {
	byEnquiry := make(map[int64][]models.Followup, len(enquiries))
	known := make(map[int64]struct{}, len(enquiries))
	for _, e := range enquiries {
		known[e.ID] = struct{}{}
	}
	for _, f := range followups {
		if _, ok := known[f.EnquiryID]; !ok {
			continue
		}
		byEnquiry[f.EnquiryID] = append(byEnquiry[f.EnquiryID], f)
	}

	out := make([]models.ReconciledEnquiry, 0, len(enquiries))
	for _, e := range enquiries {
		history := byEnquiry[e.ID]
		out = append(out, r.enrich(e, r.Latest(history), len(history), now))
	}
	return out
}

// Latest returns the follow-up with the greatest created_at, or nil. On a
// tie the earlier entry in backend order wins.
func (r *Reconciler) Latest(history []models.Followup) *models.Followup {
	var latest *models.Followup
	var at time.Time
	for i := range history {
		t := r.createdAt(history[i])
		if latest == nil || t.After(at) {
			latest, at = &history[i], t
		}
	}
	if latest == nil {
		return nil
	}
	out := *latest
	return &out
}

// History returns a copy of history ordered newest first. Timestamps are
// compared as parsed instants; unparseable ones sort as oldest, and ties
// keep backend order.
func (r *Reconciler) History(history []models.Followup) []models.Followup {
	type stamped struct {
		followup models.Followup
		at       time.Time
	}
	entries := make([]stamped, len(history))
	for i, f := range history {
		entries[i] = stamped{followup: f, at: r.createdAt(f)}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.After(entries[j].at)
	})
	sorted := make([]models.Followup, len(entries))
	for i, e := range entries {
		sorted[i] = e.followup
	}
	return sorted
}

// createdAt parses f.CreatedAt; an unparseable value is the zero time.
func (r *Reconciler) createdAt(f models.Followup) time.Time {
	t, _ := models.ParseDate(f.CreatedAt, r.loc)
	return t
}

// Overdue returns the overdue subset of items, most overdue first.
func Overdue(items []models.ReconciledEnquiry) []models.ReconciledEnquiry {
	out := make([]models.ReconciledEnquiry, 0)
	for _, item := range items {
		if item.IsOverdue {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysOverdue > out[j].DaysOverdue
	})
	return out
}

func (r *Reconciler) enrich(e models.Enquiry, latest *models.Followup, count int, now time.Time) models.ReconciledEnquiry {
	out := models.ReconciledEnquiry{Enquiry: e, LatestNotes: e.Notes, FollowupCount: count}
	if latest != nil {
		out.CurrentStatus = latest.Status
		if latest.FollowupDate != "" {
			date := latest.FollowupDate
			out.LatestFollowupDate = &date
		}
		if latest.Notes != nil {
			out.LatestNotes = latest.Notes
		}
		if latest.NextFollowupDate != nil {
			out.NextFollowup = latest.NextFollowupDate
		}
	}
	out.DaysOverdue, out.IsOverdue = r.Overdue(out.NextFollowup, now)
	return out
}

// Overdue computes ceil((startOfToday - next) / 1 day). The enquiry is
// overdue when that is positive: a next follow-up dated yesterday is
// overdue, one dated today is not. Missing or malformed dates are never
// overdue.
func (r *Reconciler) Overdue(next *string, now time.Time) (int, bool) {
	due, ok := models.ParseDatePtr(next, r.loc)
	if !ok {
		return 0, false
	}
	local := now.In(r.loc)
	startOfToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	days := int(math.Ceil(float64(startOfToday.Sub(due)) / float64(day)))
	if days <= 0 {
		return 0, false
	}
	return days, true
}

// DueOn reports whether the next follow-up falls on now's calendar day.
func (r *Reconciler) DueOn(next *string, now time.Time) bool {
	due, ok := models.ParseDatePtr(next, r.loc)
	if !ok {
		return false
	}
	a := due.In(r.loc)
	b := now.In(r.loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
