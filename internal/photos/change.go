package photos

import (
	"image"
	"strings"

	"github.com/google/uuid"
)

// Placeholder references an object created by a change request that has not
// been committed yet. Its identifier is final.
type Placeholder struct {
	LocalIdentifier string
}

type ChangeKind int

const (
	ChangeCreateImageAsset ChangeKind = iota + 1
	ChangeCreateVideoAsset
	ChangeCreateCollection
	ChangeAddAssets
	ChangeDeleteAssets
)

// Change is one recorded operation of a ChangeRequest.
type Change struct {
	Kind ChangeKind
	// Target is the created object, or the collection for ChangeAddAssets.
	Target Placeholder
	Image  image.Image
	// FileURL is the video source for ChangeCreateVideoAsset.
	FileURL string
	// Title names a created collection.
	Title string
	// Assets lists members to add or identifiers to delete.
	Assets []string
}

// ChangeRequest records the operations of one transaction. Backends apply
// Changes in order and commit them together.
type ChangeRequest struct {
	changes []Change
}

func (r *ChangeRequest) CreateAssetFromImage(img image.Image) Placeholder {
	p := Placeholder{LocalIdentifier: NewAssetIdentifier()}
	r.changes = append(r.changes, Change{Kind: ChangeCreateImageAsset, Target: p, Image: img})
	return p
}

func (r *ChangeRequest) CreateAssetFromVideo(fileURL string) Placeholder {
	p := Placeholder{LocalIdentifier: NewAssetIdentifier()}
	r.changes = append(r.changes, Change{Kind: ChangeCreateVideoAsset, Target: p, FileURL: fileURL})
	return p
}

func (r *ChangeRequest) CreateCollection(title string) Placeholder {
	p := Placeholder{LocalIdentifier: NewCollectionIdentifier()}
	r.changes = append(r.changes, Change{Kind: ChangeCreateCollection, Target: p, Title: title})
	return p
}

// AddAssets appends assets to an existing album or one created in the same request.
func (r *ChangeRequest) AddAssets(collectionID string, assets ...Placeholder) {
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.LocalIdentifier
	}
	r.changes = append(r.changes, Change{Kind: ChangeAddAssets, Target: Placeholder{LocalIdentifier: collectionID}, Assets: ids})
}

func (r *ChangeRequest) DeleteAssets(assets []Asset) {
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.LocalIdentifier
	}
	r.changes = append(r.changes, Change{Kind: ChangeDeleteAssets, Assets: ids})
}

func (r *ChangeRequest) Changes() []Change {
	return r.changes
}

func NewAssetIdentifier() string {
	return strings.ToUpper(uuid.NewString()) + "/L0/001"
}

func NewCollectionIdentifier() string {
	return strings.ToUpper(uuid.NewString()) + "/L0/040"
}

// DefaultImageFilename names a still created from decoded pixels.
func DefaultImageFilename(localIdentifier string) string {
	id := strings.ReplaceAll(localIdentifier, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "IMG_" + strings.ToUpper(id) + ".JPG"
}
