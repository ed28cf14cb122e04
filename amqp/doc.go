// Package amqp replays mutationq entries by publishing them to a RabbitMQ topic exchange.
//
// Publisher implements mutationq.Processor. Every publish waits for a publisher confirm, so
// an entry is removed from the queue only after the broker has persisted it. Routing keys
// take the form mutationq.<kind>[.<table|procedure|function|bucket>], with dots and topic
// wildcards inside the target replaced by underscores.
//
// Reconnector wraps Publisher for long-running relays: it dials on demand, redials with backoff
// after the connection drops, and fails fast while the broker is unreachable.
package amqp
