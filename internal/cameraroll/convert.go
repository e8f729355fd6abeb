package cameraroll

import (
	"strings"

	"github.com/arawak/cameraroll/internal/photos"
)

const (
	GroupTypesAll      = "all"
	AllPhotosGroupName = "All Photos"
)

type collectionKind struct {
	Type    photos.CollectionType
	Subtype photos.CollectionSubtype
}

// groupTypes maps the groupTypes values to collection fetches. photo-stream
// and saved-photos keep their historical targets for compatibility.
var groupTypes = map[string]collectionKind{
	"album":        {photos.CollectionTypeAlbum, photos.CollectionSubtypeAny},
	"all":          {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumUserLibrary},
	"event":        {photos.CollectionTypeAlbum, photos.CollectionSubtypeAlbumSyncedEvent},
	"faces":        {photos.CollectionTypeAlbum, photos.CollectionSubtypeAlbumSyncedFaces},
	"library":      {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumUserLibrary},
	"photo-stream": {photos.CollectionTypeAlbum, photos.CollectionSubtypeAlbumMyPhotoStream},
	"photostream":  {photos.CollectionTypeAlbum, photos.CollectionSubtypeAlbumMyPhotoStream},
	"saved-photos": {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeAny},
	"savedphotos":  {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeAny},
	"favorites":    {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumFavorites},
	"panoramas":    {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumPanoramas},
	"bursts":       {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumBursts},
	"selfies":      {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumSelfPortraits},
	"portrait":     {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumDepthEffect},
	"recents":      {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumRecentlyAdded},
	"screenshots":  {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumScreenshots},
	"livephotos":   {photos.CollectionTypeSmartAlbum, photos.CollectionSubtypeSmartAlbumLivePhotos},
}

// collectionKindFor falls back to any album for unrecognized values.
func collectionKindFor(groupType string) collectionKind {
	if k, ok := groupTypes[groupType]; ok {
		return k
	}
	return collectionKind{photos.CollectionTypeAlbum, photos.CollectionSubtypeAny}
}

type assetType int

const (
	assetTypeAll assetType = iota
	assetTypePhotos
	assetTypeVideos
)

// parseAssetType reports ok=false for unrecognized values, which are treated as all.
func parseAssetType(s string) (assetType, bool) {
	switch strings.ToLower(s) {
	case "photos":
		return assetTypePhotos, true
	case "videos":
		return assetTypeVideos, true
	case "all":
		return assetTypeAll, true
	default:
		return assetTypeAll, false
	}
}

func (t assetType) predicate() photos.AssetPredicate {
	switch t {
	case assetTypePhotos:
		return photos.AssetPredicate{MediaTypes: []photos.MediaType{photos.MediaTypeImage}}
	case assetTypeVideos:
		return photos.AssetPredicate{MediaTypes: []photos.MediaType{photos.MediaTypeVideo}}
	default:
		return photos.AssetPredicate{}
	}
}
