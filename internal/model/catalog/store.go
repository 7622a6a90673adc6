package catalog

// Store exposes option lookups for the conversation and HTTP handlers.
type Store interface {
	Catalog() Catalog
	Labels(kind Kind) []string
	Find(kind Kind, label string) (Option, bool)
}

// MemoryStore implements Store over an immutable Catalog.
type MemoryStore struct {
	catalog Catalog
}

// NewMemoryStore returns a MemoryStore holding a private copy of the catalog.
func NewMemoryStore(c Catalog) *MemoryStore {
	return &MemoryStore{catalog: Catalog{
		Templates: append([]Option(nil), c.Templates...),
		Colors:    append([]Option(nil), c.Colors...),
		Fonts:     append([]Option(nil), c.Fonts...),
	}}
}

// Catalog returns a copy of the full option set.
func (s *MemoryStore) Catalog() Catalog {
	return Catalog{
		Templates: append([]Option(nil), s.catalog.Templates...),
		Colors:    append([]Option(nil), s.catalog.Colors...),
		Fonts:     append([]Option(nil), s.catalog.Fonts...),
	}
}

// Labels returns the keyboard labels of one option kind in display order.
func (s *MemoryStore) Labels(kind Kind) []string {
	options := s.catalog.Options(kind)
	labels := make([]string, 0, len(options))
	for _, item := range options {
		labels = append(labels, item.Label)
	}
	return labels
}

// Find looks up an option by its exact label.
func (s *MemoryStore) Find(kind Kind, label string) (Option, bool) {
	for _, item := range s.catalog.Options(kind) {
		if item.Label == label {
			return item, true
		}
	}
	return Option{}, false
}
