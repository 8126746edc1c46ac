// Package assets bundles default playlists addressed as asset:// URLs
package assets

import "embed"

// DefaultPlaylist is used when no playlist URL is configured
const DefaultPlaylist = "asset://playlists/default.m3u"

//go:embed playlists
var FS embed.FS
