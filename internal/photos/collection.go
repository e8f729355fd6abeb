package photos

import "time"

type CollectionType int

const (
	CollectionTypeAlbum CollectionType = iota + 1
	CollectionTypeSmartAlbum
)

func (t CollectionType) String() string {
	switch t {
	case CollectionTypeAlbum:
		return "album"
	case CollectionTypeSmartAlbum:
		return "smart-album"
	default:
		return "unknown"
	}
}

type CollectionSubtype int

const (
	CollectionSubtypeAny CollectionSubtype = iota
	CollectionSubtypeAlbumRegular
	CollectionSubtypeAlbumSyncedEvent
	CollectionSubtypeAlbumSyncedFaces
	CollectionSubtypeAlbumMyPhotoStream
	CollectionSubtypeSmartAlbumUserLibrary
	CollectionSubtypeSmartAlbumFavorites
	CollectionSubtypeSmartAlbumPanoramas
	CollectionSubtypeSmartAlbumBursts
	CollectionSubtypeSmartAlbumSelfPortraits
	CollectionSubtypeSmartAlbumDepthEffect
	CollectionSubtypeSmartAlbumRecentlyAdded
	CollectionSubtypeSmartAlbumScreenshots
	CollectionSubtypeSmartAlbumLivePhotos
)

// Collection is an album or smart album.
type Collection struct {
	LocalIdentifier string
	Title           string
	Type            CollectionType
	Subtype         CollectionSubtype
	// StartDate and EndDate bound the creation dates of the members; zero when empty.
	StartDate time.Time
	EndDate   time.Time
}

// Matches reports whether c is selected by a (type, subtype) fetch.
func (c Collection) Matches(t CollectionType, st CollectionSubtype) bool {
	if c.Type != t {
		return false
	}
	return st == CollectionSubtypeAny || c.Subtype == st
}

// RecentlyAddedWindow bounds the Recently Added smart album.
const RecentlyAddedWindow = 30 * 24 * time.Hour

// SmartAlbum is a system collection whose membership is a predicate.
type SmartAlbum struct {
	Subtype   CollectionSubtype
	Title     string
	Predicate AssetPredicate
}

// LocalIdentifier is stable across processes so smart albums can be fetched by id.
func (s SmartAlbum) LocalIdentifier() string {
	return "smart/" + s.Title
}

// Collection returns the smart album with the given member date bounds.
func (s SmartAlbum) Collection(start, end time.Time) Collection {
	return Collection{
		LocalIdentifier: s.LocalIdentifier(),
		Title:           s.Title,
		Type:            CollectionTypeSmartAlbum,
		Subtype:         s.Subtype,
		StartDate:       start,
		EndDate:         end,
	}
}

var SmartAlbums = []SmartAlbum{
	{Subtype: CollectionSubtypeSmartAlbumUserLibrary, Title: "Recents"},
	{Subtype: CollectionSubtypeSmartAlbumFavorites, Title: "Favorites", Predicate: AssetPredicate{FavoritesOnly: true}},
	{Subtype: CollectionSubtypeSmartAlbumPanoramas, Title: "Panoramas", Predicate: AssetPredicate{RequiredSubtypes: SubtypePhotoPanorama}},
	{Subtype: CollectionSubtypeSmartAlbumBursts, Title: "Bursts", Predicate: AssetPredicate{BurstsOnly: true}},
	{Subtype: CollectionSubtypeSmartAlbumSelfPortraits, Title: "Selfies", Predicate: AssetPredicate{FrontCameraOnly: true}},
	{Subtype: CollectionSubtypeSmartAlbumDepthEffect, Title: "Portrait", Predicate: AssetPredicate{RequiredSubtypes: SubtypePhotoDepthEffect}},
	{Subtype: CollectionSubtypeSmartAlbumRecentlyAdded, Title: "Recently Added", Predicate: AssetPredicate{CreatedWithin: RecentlyAddedWindow}},
	{Subtype: CollectionSubtypeSmartAlbumScreenshots, Title: "Screenshots", Predicate: AssetPredicate{RequiredSubtypes: SubtypePhotoScreenshot}},
	{Subtype: CollectionSubtypeSmartAlbumLivePhotos, Title: "Live Photos", Predicate: AssetPredicate{RequiredSubtypes: SubtypePhotoLive}},
}

// SmartAlbumFor returns the smart album backing a smart collection.
func SmartAlbumFor(c Collection) (SmartAlbum, bool) {
	if c.Type != CollectionTypeSmartAlbum {
		return SmartAlbum{}, false
	}
	for _, s := range SmartAlbums {
		if s.Subtype == c.Subtype {
			return s, true
		}
	}
	return SmartAlbum{}, false
}
