package media

import (
	"maps"
	"slices"
	"strings"
)

const (
	CollectionCarousel = "carousel"
	CollectionSpeakers = "speakers"
	CollectionGallery  = "gallery"
)

// Collection is a named, independently ordered set of items stored under one remote folder.
type Collection struct {
	Key      string
	Folder   string
	Defaults map[string]any
}

// Catalog holds the collections an installation knows about.
type Catalog struct {
	collections map[string]Collection
}

func NewCatalog(collections ...Collection) *Catalog {
	c := &Catalog{collections: make(map[string]Collection, len(collections))}
	for _, col := range collections {
		col.Key = strings.ToLower(strings.TrimSpace(col.Key))
		if col.Key == "" {
			continue
		}
		c.collections[col.Key] = col
	}
	return c
}

func (c *Catalog) Lookup(key string) (Collection, bool) {
	col, ok := c.collections[strings.ToLower(strings.TrimSpace(key))]
	return col, ok
}

func (c *Catalog) Keys() []string {
	return slices.Sorted(maps.Keys(c.collections))
}

// WithDefaults returns a new map holding the collection defaults overlaid by metadata.
func (col Collection) WithDefaults(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(col.Defaults)+len(metadata))
	maps.Copy(out, col.Defaults)
	maps.Copy(out, metadata)
	return out
}
