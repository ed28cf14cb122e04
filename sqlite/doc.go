// Package sqlite provides an embedded, file-backed store for mutationq queues using the
// pure-Go modernc.org/sqlite driver.
//
// It is the natural backend for an offline client: the queue survives restarts without a
// server. The Store does not implement mutationq.Locker; a single process owns the file.
package sqlite
