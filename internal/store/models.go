package store

import (
	"database/sql"
	"time"

	"github.com/arawak/cameraroll/internal/photos"
)

type assetRow struct {
	LocalIdentifier  string          `db:"local_identifier"`
	MediaType        int             `db:"media_type"`
	MediaSubtypes    uint32          `db:"media_subtypes"`
	BurstIdentifier  string          `db:"burst_identifier"`
	Favorite         bool            `db:"favorite"`
	FrontCamera      bool            `db:"front_camera"`
	PixelWidth       int             `db:"pixel_width"`
	PixelHeight      int             `db:"pixel_height"`
	Duration         float64         `db:"duration"`
	CreationDate     time.Time       `db:"creation_date"`
	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	Altitude         sql.NullFloat64 `db:"altitude"`
	Heading          sql.NullFloat64 `db:"heading"`
	Speed            sql.NullFloat64 `db:"speed"`
	ResourceFilename string          `db:"resource_filename"`
	ResourceUTI      string          `db:"resource_uti"`
	ResourceKey      string          `db:"resource_key"`
	ResourceBytes    int64           `db:"resource_bytes"`
}

func (r assetRow) toAsset() photos.Asset {
	a := photos.Asset{
		LocalIdentifier: r.LocalIdentifier,
		MediaType:       photos.MediaType(r.MediaType),
		MediaSubtypes:   photos.MediaSubtype(r.MediaSubtypes),
		BurstIdentifier: r.BurstIdentifier,
		Favorite:        r.Favorite,
		FrontCamera:     r.FrontCamera,
		PixelWidth:      r.PixelWidth,
		PixelHeight:     r.PixelHeight,
		Duration:        r.Duration,
		CreationDate:    r.CreationDate,
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		a.Location = &photos.Location{
			Latitude:  r.Latitude.Float64,
			Longitude: r.Longitude.Float64,
			Altitude:  r.Altitude.Float64,
			Heading:   nullOr(r.Heading, -1),
			Speed:     nullOr(r.Speed, -1),
		}
	}
	if r.ResourceKey != "" {
		a.Resources = []photos.Resource{{
			OriginalFilename:      r.ResourceFilename,
			UniformTypeIdentifier: r.ResourceUTI,
			StorageKey:            r.ResourceKey,
			Bytes:                 r.ResourceBytes,
		}}
	}
	return a
}

func rowFromAsset(a photos.Asset) assetRow {
	r := assetRow{
		LocalIdentifier: a.LocalIdentifier,
		MediaType:       int(a.MediaType),
		MediaSubtypes:   uint32(a.MediaSubtypes),
		BurstIdentifier: a.BurstIdentifier,
		Favorite:        a.Favorite,
		FrontCamera:     a.FrontCamera,
		PixelWidth:      a.PixelWidth,
		PixelHeight:     a.PixelHeight,
		Duration:        a.Duration,
		CreationDate:    a.CreationDate.UTC(),
	}
	if loc := a.Location; loc != nil {
		r.Latitude = sql.NullFloat64{Float64: loc.Latitude, Valid: true}
		r.Longitude = sql.NullFloat64{Float64: loc.Longitude, Valid: true}
		r.Altitude = sql.NullFloat64{Float64: loc.Altitude, Valid: true}
		r.Heading = sql.NullFloat64{Float64: loc.Heading, Valid: true}
		r.Speed = sql.NullFloat64{Float64: loc.Speed, Valid: true}
	}
	if res, ok := a.PrimaryResource(); ok {
		r.ResourceFilename = res.OriginalFilename
		r.ResourceUTI = res.UniformTypeIdentifier
		r.ResourceKey = res.StorageKey
		r.ResourceBytes = res.Bytes
	}
	return r
}

func nullOr(v sql.NullFloat64, def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float64
}

type collectionRow struct {
	LocalIdentifier string       `db:"local_identifier"`
	Title           string       `db:"title"`
	Type            int          `db:"collection_type"`
	Subtype         int          `db:"collection_subtype"`
	StartDate       sql.NullTime `db:"start_date"`
	EndDate         sql.NullTime `db:"end_date"`
}

func (r collectionRow) toCollection() photos.Collection {
	c := photos.Collection{
		LocalIdentifier: r.LocalIdentifier,
		Title:           r.Title,
		Type:            photos.CollectionType(r.Type),
		Subtype:         photos.CollectionSubtype(r.Subtype),
	}
	if r.StartDate.Valid {
		c.StartDate = r.StartDate.Time
	}
	if r.EndDate.Valid {
		c.EndDate = r.EndDate.Time
	}
	return c
}

type dateRange struct {
	StartDate sql.NullTime `db:"start_date"`
	EndDate   sql.NullTime `db:"end_date"`
}
