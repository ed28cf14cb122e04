// Package mutationq provides a durable, offline-capable mutation queue (an outbox) for clients that keep
// issuing writes while the remote backend is unreachable.
//
// Typical flow:
//  1. Whenever a local mutation cannot be guaranteed to reach the backend, call Queue.Enqueue with one of the
//     Operation kinds (Insert, Update, Delete, RPC, FunctionCall, Upload).
//  2. When connectivity returns (or on a timer, see Relay), call Queue.Drain with a Processor that turns each
//     Entry back into a remote call.
//  3. Drain replays entries in creation order and removes each one only after the processor confirms it.
//     The first failure halts the drain, leaving that entry and everything after it queued.
//
// Entries live in a KV store (see the memory, sqlite, mysql, postgres and natskv packages). Binary upload
// payloads live in a separate BlobStore and are referenced from Upload entries by id.
package mutationq
