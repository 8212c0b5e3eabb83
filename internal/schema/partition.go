// ABOUTME: Field partitioner splitting a resource schema into writable and read-only halves.
// ABOUTME: Pure and deterministic; unmarked fields are writable.

package schema

// Partition splits s into a writable sub-schema and a read-only sub-schema.
// Every property lands in exactly one half and declared order is kept.
func Partition(s ResourceSchema) (writable, readOnly ResourceSchema) {
	writable.Title = s.Title
	readOnly.Title = s.Title

	for _, p := range s.Properties {
		if p.ReadOnly {
			readOnly.Properties = append(readOnly.Properties, p)
		} else {
			writable.Properties = append(writable.Properties, p)
		}
	}

	writable.Required = filterRequired(s.Required, writable)
	readOnly.Required = filterRequired(s.Required, readOnly)
	return writable, readOnly
}

func filterRequired(required []string, half ResourceSchema) []string {
	var out []string
	for _, name := range required {
		if _, ok := half.Property(name); ok {
			out = append(out, name)
		}
	}
	return out
}
