package photos

import (
	"path"
	"strings"
)

type typeInfo struct {
	uti  string
	mime string
	exts []string
	kind MediaType
}

var typeTable = []typeInfo{
	{"public.jpeg", "image/jpeg", []string{".jpg", ".jpeg", ".jpe"}, MediaTypeImage},
	{"public.png", "image/png", []string{".png"}, MediaTypeImage},
	{"com.compuserve.gif", "image/gif", []string{".gif"}, MediaTypeImage},
	{"public.heic", "image/heic", []string{".heic"}, MediaTypeImage},
	{"public.heif", "image/heif", []string{".heif"}, MediaTypeImage},
	{"org.webmproject.webp", "image/webp", []string{".webp"}, MediaTypeImage},
	{"com.microsoft.bmp", "image/bmp", []string{".bmp"}, MediaTypeImage},
	{"public.tiff", "image/tiff", []string{".tif", ".tiff"}, MediaTypeImage},
	{"public.mpeg-4", "video/mp4", []string{".mp4", ".m4v"}, MediaTypeVideo},
	{"com.apple.quicktime-movie", "video/quicktime", []string{".mov", ".qt"}, MediaTypeVideo},
	{"public.avi", "video/avi", []string{".avi"}, MediaTypeVideo},
	{"public.mpeg", "video/mpeg", []string{".mpg", ".mpeg"}, MediaTypeVideo},
	{"public.3gpp", "video/3gpp", []string{".3gp", ".3gpp"}, MediaTypeVideo},
	{"org.webmproject.webm", "video/webm", []string{".webm"}, MediaTypeVideo},
	{"public.mp3", "audio/mpeg", []string{".mp3"}, MediaTypeAudio},
	{"com.apple.m4a-audio", "audio/x-m4a", []string{".m4a"}, MediaTypeAudio},
	{"com.microsoft.waveform-audio", "audio/vnd.wave", []string{".wav"}, MediaTypeAudio},
}

// UTIData is used for resources whose type is not recognized.
const UTIData = "public.data"

// MIMETypeForUTI returns the preferred MIME type, or "" if none is known.
func MIMETypeForUTI(uti string) string {
	for _, t := range typeTable {
		if t.uti == uti {
			return t.mime
		}
	}
	return ""
}

// UTIForFilename derives a type identifier from the filename extension.
func UTIForFilename(name string) string {
	ext := strings.ToLower(path.Ext(name))
	for _, t := range typeTable {
		for _, e := range t.exts {
			if e == ext {
				return t.uti
			}
		}
	}
	return UTIData
}

func MediaTypeForUTI(uti string) MediaType {
	for _, t := range typeTable {
		if t.uti == uti {
			return t.kind
		}
	}
	return MediaTypeUnknown
}

// ExtensionForUTI returns the preferred extension including the dot.
func ExtensionForUTI(uti string) string {
	for _, t := range typeTable {
		if t.uti == uti {
			return t.exts[0]
		}
	}
	return ".bin"
}
