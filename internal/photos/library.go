package photos

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"time"
)

var (
	ErrNoResource = errors.New("asset has no resource")
	ErrNoPreview  = errors.New("preview not available")
)

type AuthorizationStatus int

const (
	AuthorizationStatusNotDetermined AuthorizationStatus = iota
	AuthorizationStatusRestricted
	AuthorizationStatusDenied
	AuthorizationStatusAuthorized
)

func (s AuthorizationStatus) String() string {
	switch s {
	case AuthorizationStatusNotDetermined:
		return "not-determined"
	case AuthorizationStatusRestricted:
		return "restricted"
	case AuthorizationStatusDenied:
		return "denied"
	case AuthorizationStatusAuthorized:
		return "authorized"
	default:
		return fmt.Sprintf("AuthorizationStatus(%d)", int(s))
	}
}

func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not-determined", "notdetermined", "":
		return AuthorizationStatusNotDetermined, nil
	case "restricted":
		return AuthorizationStatusRestricted, nil
	case "denied":
		return AuthorizationStatusDenied, nil
	case "authorized", "limited":
		return AuthorizationStatusAuthorized, nil
	default:
		return 0, fmt.Errorf("unknown authorization status: %q", s)
	}
}

// Authorizer owns the process-wide permission state.
type Authorizer interface {
	AuthorizationStatus(ctx context.Context) AuthorizationStatus
	// RequestAuthorization prompts the user if the state is not determined and
	// returns the resulting state.
	RequestAuthorization(ctx context.Context) AuthorizationStatus
}

// AssetFetchOptions selects assets. Results are ordered by creation date, newest first.
type AssetFetchOptions struct {
	Predicate AssetPredicate
}

// CollectionFetchOptions selects collections. Results are ordered by end date, newest first.
type CollectionFetchOptions struct {
	// Title, when set, must equal the collection title exactly.
	Title string
}

type ContentMode int

const (
	ContentModeAspectFit ContentMode = iota
	ContentModeAspectFill
)

type DeliveryMode int

const (
	DeliveryModeOpportunistic DeliveryMode = iota
	DeliveryModeHighQuality
	DeliveryModeFast
)

type ImageRequestOptions struct {
	TargetSize   image.Point
	ContentMode  ContentMode
	DeliveryMode DeliveryMode
}

// Library is the photo library. Enumerations call fn for each result in order
// and stop as soon as fn returns false.
type Library interface {
	FetchAssets(ctx context.Context, opts AssetFetchOptions, fn func(Asset) bool) error
	FetchAssetsInCollection(ctx context.Context, c Collection, opts AssetFetchOptions, fn func(Asset) bool) error
	// FetchAssetsWithLocalIdentifiers skips identifiers that do not exist.
	FetchAssetsWithLocalIdentifiers(ctx context.Context, ids []string) ([]Asset, error)
	FetchCollections(ctx context.Context, t CollectionType, st CollectionSubtype, opts CollectionFetchOptions) ([]Collection, error)
	FetchCollectionsWithLocalIdentifiers(ctx context.Context, ids []string) ([]Collection, error)
	// PerformChanges builds a change request with fn and commits it atomically.
	PerformChanges(ctx context.Context, fn func(*ChangeRequest)) error
	RequestImage(ctx context.Context, a Asset, opts ImageRequestOptions) (image.Image, error)
	OpenResource(ctx context.Context, r Resource) (io.ReadCloser, error)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type FakeClock struct {
	current time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

func (c *FakeClock) Now() time.Time {
	return c.current
}

func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
