// Package photos describes the photo library the camera roll talks to: assets,
// collections, fetch options, change requests and the authorization owner.
package photos

import (
	"strings"
	"time"
)

// URIScheme prefixes local identifiers when they leave the library.
const URIScheme = "ph://"

type MediaType int

const (
	MediaTypeUnknown MediaType = iota
	MediaTypeImage
	MediaTypeVideo
	MediaTypeAudio
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeImage:
		return "image"
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// MediaSubtype is a bitmask of capture traits.
type MediaSubtype uint32

const (
	SubtypePhotoPanorama MediaSubtype = 1 << iota
	SubtypePhotoHDR
	SubtypePhotoScreenshot
	SubtypePhotoLive
	SubtypePhotoDepthEffect
)

const (
	SubtypeVideoStreamed MediaSubtype = 1 << (16 + iota)
	SubtypeVideoHighFrameRate
	SubtypeVideoTimelapse
)

type Location struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	// Heading is the course in degrees, negative when unknown.
	Heading float64
	// Speed in meters per second.
	Speed float64
}

// Resource is one stored file backing an asset.
type Resource struct {
	OriginalFilename      string
	UniformTypeIdentifier string
	StorageKey            string
	Bytes                 int64
}

type Asset struct {
	LocalIdentifier string
	MediaType       MediaType
	MediaSubtypes   MediaSubtype
	BurstIdentifier string
	Favorite        bool
	FrontCamera     bool
	PixelWidth      int
	PixelHeight     int
	// Duration is the playable duration in seconds, zero for stills.
	Duration     float64
	CreationDate time.Time
	Location     *Location
	Resources    []Resource
}

// PrimaryResource returns the first resource of the asset.
func (a Asset) PrimaryResource() (Resource, bool) {
	if len(a.Resources) == 0 {
		return Resource{}, false
	}
	return a.Resources[0], true
}

// URI returns the persistent uri of the asset.
func (a Asset) URI() string {
	return URIForIdentifier(a.LocalIdentifier)
}

func URIForIdentifier(id string) string {
	return URIScheme + id
}

// IdentifierFromURI strips every scheme occurrence, the same way the uri was built.
func IdentifierFromURI(uri string) string {
	return strings.ReplaceAll(uri, URIScheme, "")
}
