package cameraroll

// SaveOptions selects how a source is imported. Any Type other than "video"
// is treated as a photo.
type SaveOptions struct {
	Type  string
	Album string
}

type GetPhotosParams struct {
	First      int
	After      string
	GroupName  string
	GroupTypes string
	AssetType  string
	MimeTypes  []string
	// FromTime and ToTime are milliseconds since the epoch; zero is unset.
	FromTime int64
	ToTime   int64
}

type GetAlbumsParams struct {
	AssetType string
}

type Image struct {
	URI              string  `json:"uri"`
	Filename         string  `json:"filename"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	IsStored         bool    `json:"isStored"`
	PlayableDuration float64 `json:"playableDuration"`
	Thumbnail        string  `json:"thumbnail"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
}

type Node struct {
	Type      string    `json:"type"`
	GroupName string    `json:"group_name"`
	Image     Image     `json:"image"`
	Timestamp float64   `json:"timestamp"`
	Location  *Location `json:"location,omitempty"`
}

type Edge struct {
	Node Node `json:"node"`
}

type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	StartCursor string `json:"start_cursor,omitempty"`
	EndCursor   string `json:"end_cursor,omitempty"`
}

type Page struct {
	Edges    []Edge   `json:"edges"`
	PageInfo PageInfo `json:"page_info"`
}

type Album struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}
