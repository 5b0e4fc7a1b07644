package mediamtx

import "strings"

// HLSManifestURL returns the HLS manifest URL for a camera path.
//
// The manifest is the cheapest liveness signal the media server exposes:
// it exists exactly while the stream is being served, so a HEAD against it
// answers "is this camera up" without touching any media data.
func HLSManifestURL(playbackBase, id string) string {
	return strings.TrimRight(playbackBase, "/") + "/hls/" + id + "/index.m3u8"
}

// WHEPURL returns the WebRTC WHEP endpoint URL for a camera path.
//
// Panels use WHEP for low-latency playback. The monitor only derives the
// URL; it never opens a WebRTC session itself.
func WHEPURL(webrtcBase, id string) string {
	return strings.TrimRight(webrtcBase, "/") + "/" + id + "/whep"
}
