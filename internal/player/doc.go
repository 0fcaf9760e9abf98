// Package player implements the modal media player lifecycle.
//
// A Player moves between three states:
//
//	Closed -> Open -> AutoClosePending -> Closed
//
// Opening while already open resets the previous media first. When
// auto-close is enabled, a recurring inactivity check closes the player once
// no input has been seen for the idle timeout. Videos arm the check when
// playback ends; GIFs loop forever and arm it as soon as they open.
//
// Players are kept in a Registry keyed by session id so that browsers can
// drive them over HTTP.
package player
