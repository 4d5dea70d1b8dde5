// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch and persist data,
// abstracting SQL logic away from the service layer. Every method runs inside
// database.WithTx, so each call owns one pooled connection for its duration
// and returns errors already classified by sqlerr.
package repository
