// Package memory provides an in-process mutationq store for tests and ephemeral queues.
//
// Records live only as long as the Store value; use the sqlite package for a queue
// that must survive a restart.
package memory
