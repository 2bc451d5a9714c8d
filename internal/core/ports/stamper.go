package ports

import "go.trai.ch/sift/internal/core/domain"

// Stamper fingerprints a resource. Each stamper produces stamps of a single kind.
//
//go:generate mockgen -source=stamper.go -destination=mocks/mock_stamper.go -package=mocks
type Stamper interface {
	// Kind returns the kind of the stamps this stamper produces.
	Kind() domain.StampKind

	// Stamp computes the current stamp of the resource.
	// A missing resource yields a stamp with domain.AbsentStampValue, not an error.
	Stamp(resource string) (domain.Stamp, error)
}
