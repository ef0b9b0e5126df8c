// Package models defines server-side data models persisted in the record
// store or returned by the object store.
package models

import "time"

// Product is one row of the products table, keyed by article number
// ("TVH/4521").
type Product struct {
	// ArticleNumber is the namespaced product key.
	ArticleNumber string
	// ProductName is required on insert and defaults to the article number.
	ProductName string
	// Description is nil when the column is NULL.
	Description *string
	// UpdatedAt is maintained by the database.
	UpdatedAt time.Time
}

// DescriptionText returns the stored description or "" when absent.
func (p *Product) DescriptionText() string {
	if p == nil || p.Description == nil {
		return ""
	}
	return *p.Description
}
