package cameraroll

import (
	"testing"

	"github.com/arawak/cameraroll/internal/photos"
)

func TestCollectionKindFor(t *testing.T) {
	cases := map[string]collectionKind{
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
		"":             {photos.CollectionTypeAlbum, photos.CollectionSubtypeAny},
		"Favorites":    {photos.CollectionTypeAlbum, photos.CollectionSubtypeAny},
	}
	for in, want := range cases {
		if got := collectionKindFor(in); got != want {
			t.Errorf("collectionKindFor(%q) = %+v, expected %+v", in, got, want)
		}
	}
}

func TestParseAssetType(t *testing.T) {
	cases := []struct {
		in   string
		want assetType
		ok   bool
	}{
		{"photos", assetTypePhotos, true},
		{"Photos", assetTypePhotos, true},
		{"VIDEOS", assetTypeVideos, true},
		{"all", assetTypeAll, true},
		{"", assetTypeAll, false},
		{"gifs", assetTypeAll, false},
	}
	for _, tc := range cases {
		got, ok := parseAssetType(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseAssetType(%q) = %v, %v; expected %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if p := assetTypeAll.predicate(); len(p.MediaTypes) != 0 {
		t.Fatalf("all must not restrict media types")
	}
}
