// Package scenario replays keyed-list edits through the renderer.
//
// A scenario is a YAML file naming an initial list of keys and a sequence
// of steps that rewrite it:
//
//	name: rotate
//	initial: [a, b, c]
//	steps:
//	  - name: rotate
//	    set: [c, a, b]
//	    expect:
//	      moves: 1
//
// A Player mounts a real component over an in-memory host, applies each
// step to reactive state and records the host operations the scheduler
// flush produced. The resulting Trace is what the CLI prints, the devtools
// server streams and the golden tests pin down.
package scenario
