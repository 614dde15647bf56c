// Package player drives ordered, sequential playback of a playlist with
// pause/resume and automatic advance, delegating audio decoding and output
// to an Output collaborator.
package player

// Output is the minimal audio-output capability the sequencer is written
// against. Implementations own the decode and the sound path; the sequencer
// only ever hands them file paths.
type Output interface {
	// Load prepares an audio file for playback, replacing any previously
	// loaded file.
	Load(path string) error

	// Play starts output of the loaded file.
	Play() error

	// Pause suspends output; Resume continues it. Both are no-ops when
	// nothing is playing.
	Pause()
	Resume()

	// Stop halts output and discards the loaded file. Done must not fire
	// for a stopped file.
	Stop()

	// Done returns a channel that is closed when the loaded file finishes
	// playing naturally. Each Load supplies a fresh channel.
	Done() <-chan struct{}
}
