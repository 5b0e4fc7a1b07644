// Package mediamtx provides the client for the MediaMTX control API.
//
// This package is internal to camwatch and handles all communication with
// the media server: listing configured paths, fetching per-path
// configuration in bounded batches, and adding or deleting paths. It also
// derives playback URLs (HLS manifest, WebRTC WHEP) as pure functions.
//
// The main components are:
//
//   - [Client]: resty-based REST client with a fixed retry budget for
//     transient transport failures
//   - [PathItem]: one entry of the paths list
//   - [PathConfig]: configuration of a single path, including the synthetic
//     placeholder used when a per-path fetch fails
//   - [AddPathRequest]: body for path creation
//
// The media server is an opaque collaborator: nothing in this package
// interprets stream contents or speaks any media protocol.
//
// Users of the camwatch library should not need to interact with this
// package directly. Configuration is done through the main camwatch package.
package mediamtx
