package workflow

type PhotoKind string

const (
	Local  PhotoKind = "local"
	Remote PhotoKind = "remote"
)

// Photo is one asset of the session. Local photos hold their bytes and a
// preview handle; remote photos hold the storage path and public URL.
type Photo struct {
	ID          string
	Kind        PhotoKind
	Position    int
	FileName    string
	ContentType string

	Data    []byte
	Preview string

	Path string
	URL  string
}

// Upload is a file selected by the user.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}
