// Package fedcore is the HTTP-request dispatch core of an ActivityPub
// federation server: actor and object descriptors, actor-scoped
// collections, and the inbox ingestion pipeline. It authenticates and
// authorizes requests, invokes user-supplied dispatcher callbacks, applies
// content negotiation between HTML and ActivityStreams JSON-LD, and, for
// the inbox, verifies the signed delivery, deduplicates replays, and routes
// activities to typed listeners.
//
// fedcore deliberately knows nothing about the ActivityStreams vocabulary
// object graph, HTTP-signature primitives, JSON-LD proof verification, or
// persistent storage -- those are external collaborators, injected as the
// function types declared in callbacks.go. The vocab, httpsig, and kvstore
// packages provide reference implementations a server can wire in. fedcore
// never calls httpsig, reaches kvstore only through its Store interface,
// and calls vocab.PeekType and vocab.Decode directly to parse inbox bodies.
//
// The dispatch core does not implement outbound delivery, scheduling,
// retry, persistent actor storage, or access control beyond invoking the
// caller's authorization predicate.
package fedcore
