package domain

import (
	"slices"
	"strings"
)

const listingSeparator = "|"

// ListingResource names the dir-listing resource of dir restricted to the given
// extensions. An empty extension list selects every file.
func ListingResource(dir string, extensions []string) string {
	if len(extensions) == 0 {
		return dir
	}
	exts := slices.Clone(extensions)
	slices.Sort(exts)
	return dir + listingSeparator + strings.Join(slices.Compact(exts), ",")
}

// ParseListingResource splits a dir-listing resource into its directory and extension filter.
func ParseListingResource(resource string) (dir string, extensions []string) {
	dir, filter, found := strings.Cut(resource, listingSeparator)
	if !found || filter == "" {
		return dir, nil
	}
	return dir, strings.Split(filter, ",")
}
