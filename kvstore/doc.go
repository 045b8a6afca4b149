// Package kvstore provides the key-value store collaborator the inbox
// pipeline uses for at-most-once delivery. fedcore only depends on the
// Store interface; Memory and Redis are two concrete backends a server
// can choose between depending on whether it runs as a single process.
package kvstore
