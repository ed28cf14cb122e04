// Package testutil starts the servers backend tests run against: an embedded NATS server
// for every test run, and MySQL/PostgreSQL containers behind the integration build tag.
package testutil
