// Package mediatypes classifies media files by extension.
//
// It has no dependencies inside the module so routing, rendering and the
// thumbnail generator can share one table of extensions:
//
//	mediatypes.GetFileType(".webm")  // FileTypeVideo
//	mediatypes.GetMimeType(".png")   // "image/png"
//	mediatypes.IsResizable(".webp")  // true
//	mediatypes.ProxyFileType(".gif") // FileTypeImage
//
// Extensions are matched case-insensitively and must include the leading
// dot.
package mediatypes
