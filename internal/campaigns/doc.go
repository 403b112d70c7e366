// Package campaigns manages community planting campaigns: creation, progress
// toward tree goals, proximity search, and milestone announcements.
//
// Milestone checks are driven by the daemon on an interval. Announced
// milestones are recorded in the store, so a crossing is announced exactly
// once no matter how often the check runs.
package campaigns
