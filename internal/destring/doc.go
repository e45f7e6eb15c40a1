// Package destring recovers plaintext page manifests from FlipHTML5's
// obfuscated encoding.
//
// The vendor ships a decoder module ("artifact"): JavaScript scaffold text
// with a compiled binary payload embedded as a base64 data URI. Decoding one
// manifest is a session: the artifact text is fetched through the cache,
// the binary payload is extracted, the scaffold runs inside a capability-
// minimal goja shim until it signals that the binary finished loading, and
// the ciphertext is then pushed through the binary's exported decode symbol
// behind the Runtime/Instance string FFI.
//
// The scaffold's initialization-complete hook is patched by exact substring
// substitution. The hook text is a versioned contract with the vendor: when
// it drifts, decoding fails loudly with ErrHookNotFound instead of hanging
// on a callback that will never fire.
//
// Sessions are single-use and share nothing except the read-only cached
// artifact bytes on disk. The orchestrator-facing Service runs each session
// in an isolated helper subprocess by default.
package destring
