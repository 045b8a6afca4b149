// Package httpsig provides fedcore's reference implementation of the two
// HTTP-signature collaborators the core treats as external: a
// SignatureVerifier that authenticates an inbound request (Verifier.Verify),
// and Sign, used by outbound delivery to produce one.
package httpsig
