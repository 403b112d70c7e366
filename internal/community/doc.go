// Package community implements the social layer: the shared activity feed,
// per-user notifications, and achievement awards evaluated after planting and
// scanning activity.
package community
