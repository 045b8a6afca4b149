// Package store is fedcore's demo persistence layer: actors, their RSA
// keys, follower ledgers, operator sessions, and registered OAuth2 clients,
// all kept as flat files under a root directory. It backs cmd/fedcoredemo's
// ActorDispatcher, CollectionDispatcher, and ObjectDispatcher callbacks.
//
// Followers and OAuth clients are append-only ndb record files; actor
// directories and sessions use a one-file-per-value layout. fedcore's core
// package never imports store directly -- it only ever sees the
// ActorDispatcher, CollectionDispatcher and ObjectDispatcher closures
// cmd/fedcoredemo builds around store's methods.
package store
