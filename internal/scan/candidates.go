package scan

// Candidate is one (field, value) lookup to try against the store.
type Candidate struct {
	Field Field
	Value string
}

// Candidates expands a classification into every distinct lookup worth
// attempting, in priority order: the primary pair first, then auxiliary
// identifiers the input carried, then the two generic reinterpretations of
// the primary value against both fields. Duplicates keep their first-seen
// position. An invalid classification yields nothing.
//
// The generic tail means a value scanned as one kind still gets tried against
// the other column before the resolver gives up; a record registered with its
// code in the id column, or vice versa, still resolves.
func (p Parsed) Candidates() []Candidate {
	if !p.Valid() || p.PrimaryID == "" {
		return nil
	}

	ordered := make([]Candidate, 0, 5)
	ordered = append(ordered, Candidate{Field: p.PrimaryField, Value: p.PrimaryID})
	if p.RecordID != "" {
		ordered = append(ordered, Candidate{Field: FieldRecordID, Value: p.RecordID})
	}
	if p.CodeID != "" {
		ordered = append(ordered, Candidate{Field: FieldCode, Value: p.CodeID})
	}
	ordered = append(ordered,
		Candidate{Field: FieldCode, Value: p.PrimaryID},
		Candidate{Field: FieldRecordID, Value: p.PrimaryID},
	)

	seen := make(map[Candidate]struct{}, len(ordered))
	deduped := ordered[:0]
	for _, candidate := range ordered {
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		deduped = append(deduped, candidate)
	}
	return deduped
}
