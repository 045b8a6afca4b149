// Package vocab holds the small slice of the ActivityStreams vocabulary
// that fedcore needs a concrete shape for: actors, objects, links, and the
// activity class hierarchy used for listener dispatch. The full vocabulary
// object graph is an external collaborator (see fedcore's doc comment); this
// package exists so fedcore has something to compile and test against.
package vocab
