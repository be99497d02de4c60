// Package catalog holds the immutable catalog model: items, their embeddings and the frozen corpus.
package catalog

// Attributes is the raw attribute set of a catalog item. Nil pointers mean the
// upstream record did not carry the field.
type Attributes struct {
	Name        string
	Brand       *string
	Price       *float64
	SizeInches  *float64
	Rating      *float64
	Resolution  *string
	SourcePage  string
	URL         *string
	Description *string
}

// Item is a catalog listing (immutable value object). Its corpus index is the only identity.
type Item struct {
	index       int
	name        string
	brand       *string
	price       *float64
	sizeInches  *float64
	rating      *float64
	resolution  *string
	sourcePage  string
	url         *string
	description *string
}

// NewItem creates an Item at the given corpus index, copying every optional value.
func NewItem(index int, a Attributes) Item {
	return Item{
		index:       index,
		name:        a.Name,
		brand:       clonePtr(a.Brand),
		price:       clonePtr(a.Price),
		sizeInches:  clonePtr(a.SizeInches),
		rating:      clonePtr(a.Rating),
		resolution:  clonePtr(a.Resolution),
		sourcePage:  a.SourcePage,
		url:         clonePtr(a.URL),
		description: clonePtr(a.Description),
	}
}

// Index returns the 0-based position of the item in its corpus.
func (i Item) Index() int { return i.index }

// Name returns the listing title.
func (i Item) Name() string { return i.name }

// SourcePage returns the retailer the listing was scraped from.
func (i Item) SourcePage() string { return i.sourcePage }

// Brand returns the brand, if known.
func (i Item) Brand() (string, bool) { return deref(i.brand) }

// Price returns the price, if known.
func (i Item) Price() (float64, bool) { return deref(i.price) }

// SizeInches returns the screen size in inches, if known.
func (i Item) SizeInches() (float64, bool) { return deref(i.sizeInches) }

// Rating returns the customer rating, if known.
func (i Item) Rating() (float64, bool) { return deref(i.rating) }

// Resolution returns the display resolution label, if known.
func (i Item) Resolution() (string, bool) { return deref(i.resolution) }

// URL returns the product URL as scraped (possibly malformed), if known.
func (i Item) URL() (string, bool) { return deref(i.url) }

// Description returns the normalized text the embedding was computed from, if present.
func (i Item) Description() (string, bool) { return deref(i.description) }

// Attributes returns a copy of the item's attributes.
func (i Item) Attributes() Attributes {
	return Attributes{
		Name:        i.name,
		Brand:       clonePtr(i.brand),
		Price:       clonePtr(i.price),
		SizeInches:  clonePtr(i.sizeInches),
		Rating:      clonePtr(i.rating),
		Resolution:  clonePtr(i.resolution),
		SourcePage:  i.sourcePage,
		URL:         clonePtr(i.url),
		Description: clonePtr(i.description),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
