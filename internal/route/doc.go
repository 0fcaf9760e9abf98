// Package route maps request paths to portal pages or media-proxy redirects.
//
// Media paths are matched before page names, in a fixed order:
//
//  1. legacy:        /media/{deployment}/{type}/{file}
//  2. hierarchical:  /{deploymentType}/{deviceType}/{file.ext}
//  3. typed:         /{type}/{deploymentType}/{deviceType}/{file}
//  4. simplified:    /{type}/{deployment}/{file}
//
// The hierarchical form is checked before the typed one. Anything left over
// with one or two segments is a page name, where /{a}/{b} addresses the same
// page as /{a}-{b}.
package route
