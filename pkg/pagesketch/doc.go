// Package pagesketch provides the public API for running pagesketch
// scripts: Lua sketches that draw page items into a layout document with
// Processing-style transforms.
//
// # Basic Usage
//
// Run a script from disk once and export the result:
//
//	opts := pagesketch.DefaultOptions()
//	opts.Output = "poster.pdf"
//	s, err := pagesketch.New("poster.lua", &opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := s.Run(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// # Script Sources
//
//   - Disk file: Use [New] to run a script from a filesystem path
//   - Embedded FS: Use [NewFromFS] to run a script from an [io/fs.FS]
//   - io.Reader: Use [NewFromReader] for generated scripts
//
// Document setup, initial drawing modes and output settings come from an
// optional configuration file named by [Options.ConfigPath], written as a
// Lua table or as TOML.
//
// # Runs and Frames
//
// A run builds a fresh document, executes the script body, then calls
// setup() and draw(). A script that calls loop() keeps receiving draw()
// calls at its frame rate until it calls noLoop() or the context passed to
// [Sketch.Run] is cancelled. The document is exported when the run ends.
//
// With [Options.Watch], saving the script or its configuration starts a
// new run. [Sketch.Reload] does the same on demand.
//
// # Preview
//
// [Options.Preview] opens a window that shows the current page after every
// frame. The window must be driven from the main goroutine, so call
// [Sketch.Run] from main when previewing. Builds with the noebiten tag
// have no preview.
package pagesketch
