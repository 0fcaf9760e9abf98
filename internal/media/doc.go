// Package media produces resized thumbnails for images referenced by the
// page configuration.
//
// Source images are read from the static asset directory, resized with
// disintegration/imaging (WebP decoding via golang.org/x/image/webp) and
// cached as JPEG files keyed by source path, modification time and width.
// Requested widths are snapped to a small set so the cache stays bounded.
package media
