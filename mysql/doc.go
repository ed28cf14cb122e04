// Package mysql provides a MySQL 8.0+ store for mutationq queues.
//
// Each Store owns one table holding one namespace (entries or blobs):
//   - k VARCHAR(191) primary key, the entry or blob id
//   - v LONGBLOB, the encoded record
//
// The Store also implements mutationq.Locker with GET_LOCK/RELEASE_LOCK so that only one process
// drains a shared queue at a time. See Schema for the table DDL.
package mysql
