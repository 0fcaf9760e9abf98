package mediatypes

import "strings"

// FileType represents the type of a media file.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions lists image formats the portal serves.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// VideoExtensions lists video formats the portal serves.
var VideoExtensions = map[string]bool{
	".webm": true,
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
}

// resizableExtensions are the image formats the thumbnail generator decodes.
var resizableExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// proxyExtensions are the extensions recognised in media-proxy paths that
// carry no explicit type segment.
var proxyExtensions = map[string]FileType{
	".webm": FileTypeVideo,
	".mp4":  FileTypeVideo,
	".png":  FileTypeImage,
	".jpg":  FileTypeImage,
	".jpeg": FileTypeImage,
	".gif":  FileTypeImage,
}

// ProxyProbeOrder is the order in which extensions are tried when a
// media-proxy path names a file without one.
var ProxyProbeOrder = []string{".webm", ".mp4", ".png", ".jpg", ".jpeg", ".gif"}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",

	".webm": "video/webm",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
}

// GetFileType returns the FileType for a file extension.
func GetFileType(ext string) FileType {
	ext = strings.ToLower(ext)
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a file extension, or
// "application/octet-stream" if it is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsMediaFile returns true if the extension represents a supported media file.
func IsMediaFile(ext string) bool {
	return GetFileType(ext) != FileTypeOther
}

// IsResizable reports whether thumbnails can be produced from the extension.
func IsResizable(ext string) bool {
	return resizableExtensions[strings.ToLower(ext)]
}

// ProxyFileType returns the type inferred for a media-proxy file name
// extension, or FileTypeOther when the extension does not mark a proxy path.
func ProxyFileType(ext string) FileType {
	if t, ok := proxyExtensions[strings.ToLower(ext)]; ok {
		return t
	}
	return FileTypeOther
}
