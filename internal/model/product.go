package model

// ProductID is the catalog's stable key for a manufactured product.
type ProductID string

// CatalogEntry is one product with the design/artis codes it is known by.
type CatalogEntry struct {
	ID      ProductID
	Aliases []string // in catalog order
}
