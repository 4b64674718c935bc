package store

// Catalog is a whole-collection repository over one JSON array key.
// Every mutation is a read-modify-write of the entire blob.
type Catalog[T any] interface {
	Load() []T
	Save(items []T) error
}

// JSONCatalog stores a []T under a single key through an Adapter.
type JSONCatalog[T any] struct {
	adapter *Adapter
	key     string
}

// NewJSONCatalog creates a catalog bound to key.
func NewJSONCatalog[T any](a *Adapter, key string) *JSONCatalog[T] {
	return &JSONCatalog[T]{adapter: a, key: key}
}

// Load returns the stored collection. Missing, corrupt, non-array or
// unreadable blobs all load as empty.
func (c *JSONCatalog[T]) Load() []T {
	var items []T
	if c.adapter.ReadJSON(c.key, &items) != Found {
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// Save writes the whole collection. A nil slice is stored as [].
func (c *JSONCatalog[T]) Save(items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.adapter.WriteJSON(c.key, items)
}

var (
	_ Catalog[DocumentMeta] = (*JSONCatalog[DocumentMeta])(nil)
	_ Catalog[TrashItem]    = (*JSONCatalog[TrashItem])(nil)
)
