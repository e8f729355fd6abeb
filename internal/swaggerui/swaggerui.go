// Package swaggerui serves the interactive docs for the camera roll HTTP API.
package swaggerui

import (
	"net/http"
	"strings"

	swgui "github.com/swaggest/swgui/v5"
)

const Title = "Camera Roll API"

// Handler serves Swagger UI under basePath for the document at specPath.
// Assets are embedded, no CDN. A request for the bare basePath is redirected
// to the index so relative asset links resolve.
func Handler(basePath, specPath string) http.Handler {
	basePath = "/" + strings.Trim(basePath, "/")
	ui := swgui.New(Title, specPath, basePath+"/")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == basePath {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
			return
		}
		ui.ServeHTTP(w, r)
	})
}
