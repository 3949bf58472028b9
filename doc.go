// Package dao exposes typed services over the generic repositories of the
// repository package. Entity types are registered once at startup and
// resolved by type parameter afterwards.
package dao
