package domain

// FeedFile is a fetched copy of the raw feed on local disk.
type FeedFile struct {
	Path   string
	Cached bool
	Bytes  int64
}
