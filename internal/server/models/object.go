package models

import "time"

// StoredObject is one entry of an object-store listing.
type StoredObject struct {
	// Path is the full object key inside the bucket.
	Path string
	// Size is the object size in bytes.
	Size int64
	// LastModified is reported by the backend; zero when unknown.
	LastModified time.Time
}
