package scan

import (
	"context"
	"fmt"
	"log/slog"

	"greensprint/internal/geo"
	"greensprint/internal/logging"
	"greensprint/internal/services"
)

// Finder looks up a single record by one lookup field. A miss is (nil, nil);
// errors mean the store itself failed.
type Finder[R any] interface {
	Find(ctx context.Context, field Field, value string) (*R, error)
}

// Recorder appends a scan event for a resolved record.
type Recorder[R any] interface {
	RecordScan(ctx context.Context, record *R, event Event) error
}

// Event describes the side effect appended after a successful resolution.
type Event struct {
	Actor    string
	Location *geo.Point
	Field    Field
	RawInput string
}

// Options adjusts a single Resolve call.
type Options struct {
	// Actor is the user credited with the scan event, when recorded.
	Actor string
	// Location is the scanner's position, when known.
	Location *geo.Point
	// RecordEvent appends a scan event after a hit. Recording is best
	// effort: failure surfaces as Result.Warning, never as an error.
	RecordEvent bool
}

// Result is a successful resolution. Warning is non-empty when the follow-up
// scan event could not be recorded.
type Result[R any] struct {
	Record       *R
	Parsed       Parsed
	MatchedField Field
	MatchedValue string
	Attempts     int
	Warning      string
}

// Resolver resolves raw scan strings against a record finder. Lookups run
// strictly sequentially in candidate priority order and stop at the first
// hit; correctness depends on that order, so candidates are never raced.
type Resolver[R any] struct {
	finder   Finder[R]
	recorder Recorder[R]
	logger   *slog.Logger
}

// NewResolver wires a resolver to its collaborators. recorder may be nil
// when scan events are not wanted; logger may be nil.
func NewResolver[R any](finder Finder[R], recorder Recorder[R], logger *slog.Logger) *Resolver[R] {
	return &Resolver[R]{
		finder:   finder,
		recorder: recorder,
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve classifies raw text and walks its lookup candidates until one
// matches. Unrecognized input fails with ErrMalformedInput before any store
// call. Exhausting every candidate fails with ErrNotFound; a store error
// aborts immediately with ErrUnavailable so callers can distinguish "not
// registered" from "store unreachable".
func (r *Resolver[R]) Resolve(ctx context.Context, raw string, opts Options) (*Result[R], error) {
	parsed := Classify(raw)
	if !parsed.Valid() {
		return nil, services.Wrap(services.ErrMalformedInput, "resolver", "classify",
			fmt.Sprintf("%q matches no known identifier format", clip(raw)), nil)
	}

	candidates := parsed.Candidates()
	attempts := 0
	for _, candidate := range candidates {
		attempts++
		record, err := r.finder.Find(ctx, candidate.Field, candidate.Value)
		if err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "resolver", "lookup",
				fmt.Sprintf("candidate %d of %d (%s)", attempts, len(candidates), candidate.Field), err)
		}
		if record == nil {
			continue
		}

		result := &Result[R]{
			Record:       record,
			Parsed:       parsed,
			MatchedField: candidate.Field,
			MatchedValue: candidate.Value,
			Attempts:     attempts,
		}
		r.logger.Debug("scan resolved",
			logging.String("kind", string(parsed.Kind)),
			logging.String("match_field", string(candidate.Field)),
			logging.Int("attempts", attempts),
		)

		if opts.RecordEvent && r.recorder != nil {
			event := Event{
				Actor:    opts.Actor,
				Location: opts.Location,
				Field:    candidate.Field,
				RawInput: raw,
			}
			if err := r.recorder.RecordScan(ctx, record, event); err != nil {
				result.Warning = fmt.Sprintf("scan event not recorded: %v", err)
				r.logger.Warn("scan event recording failed; resolution unaffected",
					logging.String("match_field", string(candidate.Field)),
					logging.Error(err),
				)
			}
		}
		return result, nil
	}

	return nil, services.Wrap(services.ErrNotFound, "resolver", "lookup",
		fmt.Sprintf("no record matches %q after %d lookups; it may not be registered yet", clip(raw), attempts), nil)
}

// clip bounds raw scan text quoted into error messages.
func clip(raw string) string {
	const max = 64
	if len(raw) <= max {
		return raw
	}
	return raw[:max] + "..."
}
