// Package natskv stores mutationq records in a NATS JetStream key-value bucket.
//
// Keys are base64url encoded because entry and blob ids may contain characters the KV
// subject space rejects. Use one bucket per namespace. JetStream gives no cross-client
// lock here, so only one process may drain a bucket-backed queue.
package natskv
