package ports

// FileSystem gives tasks access to file contents and directory listings.
// The engine never caches what it returns; it only records stamps.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// ReadFile returns the content of the file at path.
	ReadFile(path string) ([]byte, error)

	// ListFiles returns the sorted paths, relative to root, of the regular files
	// below root for which match returns true.
	ListFiles(root string, match func(rel string) bool) ([]string, error)
}
