package cameraroll

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/jpeg"
	"slices"
	"strings"
	"time"

	"github.com/arawak/cameraroll/internal/photos"
)

const thumbnailSize = 300

var thumbnailOptions = photos.ImageRequestOptions{
	TargetSize:   image.Pt(thumbnailSize, thumbnailSize),
	ContentMode:  photos.ContentModeAspectFill,
	DeliveryMode: photos.DeliveryModeOpportunistic,
}

// GetPhotos returns one page of assets, newest first. After is an exclusive
// cursor taken from a previous page.
func (s *Service) GetPhotos(ctx context.Context, params GetPhotosParams) (*Page, error) {
	if err := s.EnsureAuthorized(ctx); err != nil {
		return nil, err
	}
	if s.usageDescription == "" {
		s.warnUsage.Do(func() {
			s.logger.WarnContext(ctx, "photo library usage description is not configured; set CAMERAROLL_PHOTO_LIBRARY_USAGE_DESCRIPTION")
		})
	}

	kind, ok := parseAssetType(params.AssetType)
	if !ok {
		s.logger.ErrorContext(ctx, "unknown asset type, using all", "assetType", params.AssetType)
	}
	predicate := kind.predicate()
	if params.FromTime != 0 {
		predicate.CreatedAfter = time.UnixMilli(params.FromTime)
	}
	if params.ToTime != 0 {
		predicate.CreatedUntil = time.UnixMilli(params.ToTime)
	}
	assetOpts := photos.AssetFetchOptions{Predicate: predicate}

	c := &collector{
		service: s,
		ctx:     ctx,
		first:   max(params.First, 0),
		after:   params.After,
		mimes:   params.MimeTypes,
		edges:   []Edge{},
	}

	groupType := strings.ToLower(params.GroupTypes)
	if groupType == GroupTypesAll {
		err := s.library.FetchAssets(ctx, assetOpts, func(a photos.Asset) bool {
			return c.visit(a, AllPhotosGroupName)
		})
		if err != nil {
			return nil, s.fetchFailed(ctx, err)
		}
		return c.page(), nil
	}

	kindFor := collectionKindFor(groupType)
	collections, err := s.library.FetchCollections(ctx, kindFor.Type, kindFor.Subtype, photos.CollectionFetchOptions{Title: params.GroupName})
	if err != nil {
		return nil, s.fetchFailed(ctx, err)
	}
	for _, col := range collections {
		err := s.library.FetchAssetsInCollection(ctx, col, assetOpts, func(a photos.Asset) bool {
			return c.visit(a, col.Title)
		})
		if err != nil {
			return nil, s.fetchFailed(ctx, err)
		}
		if c.full {
			break
		}
	}
	return c.page(), nil
}

func (s *Service) fetchFailed(ctx context.Context, err error) error {
	s.logger.ErrorContext(ctx, "fetch photos failed", "err", err)
	return wrap(ErrUnableToFetch, err)
}

// collector accumulates one page across every enumerated collection.
type collector struct {
	service    *Service
	ctx        context.Context
	first      int
	after      string
	afterFound bool
	mimes      []string
	edges      []Edge
	full       bool
}

// visit reports whether enumeration should continue.
func (c *collector) visit(a photos.Asset, groupName string) bool {
	uri := a.URI()
	if c.after != "" && !c.afterFound {
		if uri == c.after {
			c.afterFound = true
		}
		return true
	}
	res, ok := a.PrimaryResource()
	if !ok {
		return true
	}
	if len(c.mimes) > 0 && !slices.Contains(c.mimes, photos.MIMETypeForUTI(res.UniformTypeIdentifier)) {
		return true
	}
	if len(c.edges) >= c.first {
		c.full = true
		return false
	}

	node := Node{
		Type:      a.MediaType.String(),
		GroupName: groupName,
		Image: Image{
			URI:              uri,
			Filename:         res.OriginalFilename,
			Width:            a.PixelWidth,
			Height:           a.PixelHeight,
			IsStored:         true,
			PlayableDuration: a.Duration,
			Thumbnail:        c.service.thumbnail(c.ctx, a),
		},
		Timestamp: float64(a.CreationDate.UnixMilli()) / 1000,
	}
	if loc := a.Location; loc != nil {
		node.Location = &Location{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Altitude:  loc.Altitude,
			Heading:   loc.Heading,
			Speed:     loc.Speed,
		}
	}
	c.edges = append(c.edges, Edge{Node: node})
	return true
}

func (c *collector) page() *Page {
	p := &Page{Edges: c.edges, PageInfo: PageInfo{HasNextPage: c.full}}
	if len(c.edges) > 0 {
		p.PageInfo.StartCursor = c.edges[0].Node.Image.URI
		p.PageInfo.EndCursor = c.edges[len(c.edges)-1].Node.Image.URI
	}
	return p
}

// thumbnail returns a base64 JPEG preview, or "" when none can be made.
func (s *Service) thumbnail(ctx context.Context, a photos.Asset) string {
	img, err := s.library.RequestImage(ctx, a, thumbnailOptions)
	if err != nil {
		s.logger.DebugContext(ctx, "thumbnail unavailable", "id", a.LocalIdentifier, "err", err)
		return ""
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpeg.DefaultQuality}); err != nil {
		s.logger.DebugContext(ctx, "thumbnail encode failed", "id", a.LocalIdentifier, "err", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
