package admission

import "context"

// Store persists admission records as an ordered sequence.
//
// Implementations do not check id uniqueness on Append; Service generates
// ids that are unique in practice.
type Store interface {
	// Append adds a record to the end of the sequence.
	Append(ctx context.Context, r Record) (Record, error)
	// FindByID returns the first record with the given id.
	FindByID(ctx context.Context, id string) (Record, bool, error)
	// FindAllByField returns every record whose field equals value, in insertion order.
	FindAllByField(ctx context.Context, field Field, value string) ([]Record, error)
	// UpdateByID merges patch into the record with the given id and persists it.
	// ok is false, and nothing is written, when no record has that id.
	UpdateByID(ctx context.Context, id string, patch Patch) (Record, bool, error)
	// List returns all records in insertion order.
	List(ctx context.Context) ([]Record, error)
}

func filterByField(records []Record, field Field, value string) []Record {
	out := []Record{}
	for _, r := range records {
		if v, ok := r.Value(field); ok && v == value {
			out = append(out, r)
		}
	}
	return out
}

func indexOf(records []Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
