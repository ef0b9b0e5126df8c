package workflow

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/productkeeper/internal/common"
)

// ProductID is the digits-only product identifier within a namespace.
type ProductID string

// ParseProductID trims surrounding whitespace and rejects anything that is
// not a non-empty run of ASCII digits.
func ParseProductID(raw string) (ProductID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", common.ErrInvalidProductID
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", common.ErrInvalidProductID
		}
	}
	return ProductID(s), nil
}

const defaultExt = "jpg"

var imageExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"heic": true,
	"heif": true,
}

// Namespace is the fixed prefix products live under ("tvh").
type Namespace string

func NewNamespace(s string) Namespace {
	return Namespace(strings.ToLower(strings.TrimSpace(s)))
}

// Folder is the storage folder for id: "tvh-4521".
func (n Namespace) Folder(id ProductID) string {
	return string(n) + "-" + string(id)
}

// Prefix is the listing prefix for id, with the trailing slash.
func (n Namespace) Prefix(id ProductID) string {
	return n.Folder(id) + "/"
}

// ArticleNumber is the record key for id: "TVH/4521".
func (n Namespace) ArticleNumber(id ProductID) string {
	return strings.ToUpper(string(n)) + "/" + string(id)
}

// ObjectPath is "tvh-4521/tvh-4521-<index>.<ext>".
func (n Namespace) ObjectPath(id ProductID, index int, ext string) string {
	f := n.Folder(id)
	return fmt.Sprintf("%s/%s-%d.%s", f, f, index, ext)
}

// ParseIndex extracts N from a path produced by ObjectPath. Foreign names
// report false.
func (n Namespace) ParseIndex(id ProductID, p string) (int, bool) {
	base := path.Base(p)
	base = strings.TrimSuffix(base, path.Ext(base))

	rest, ok := strings.CutPrefix(base, n.Folder(id)+"-")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 1 {
		return 0, false
	}
	return i, true
}

// Ext returns the lower-cased extension of filename, or "jpg" when it has
// none usable.
func Ext(filename string) string {
	e := strings.ToLower(strings.TrimPrefix(path.Ext(path.Base(filename)), "."))
	if e == "" {
		return defaultExt
	}
	for _, r := range e {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultExt
		}
	}
	return e
}

// IsImage reports whether p carries a recognised image extension.
func IsImage(p string) bool {
	e := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	return imageExts[e]
}
