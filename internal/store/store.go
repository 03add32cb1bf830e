// Package store is the persistence surface for the back office: named JSON
// blobs with whole-collection replace semantics. Every service keeps its
// authoritative state in memory and writes the full collection through on
// each mutation; on startup it reads the collection back wholesale. There
// are no partial writes, no transactions and no migration versioning.
package store

import (
	"context"
	"errors"
)

// Collection keys. The names match the browser local-storage keys of the
// original front office so exported data stays recognizable.
const (
	CollectionReservations     = "grupoNioiReservasSala"
	CollectionWorks            = "grupoNioiObras"
	CollectionPersonnel        = "grupoNioiPersonal"
	CollectionAttendance       = "grupoNioiAsistencias"
	CollectionPriceRequests    = "grupoNioiPedidosPrecios"
	CollectionActiveCashBox    = "grupoNioiCajaChicaActiva"
	CollectionArchivedCashBoxes = "grupoNioiCajasChicasArchivadas"
	CollectionAuditLog         = "grupoNioiRegistroActividad"
)

// ErrNotFound is returned by Load when the collection has never been saved.
var ErrNotFound = errors.New("collection not found")

// Store reads and writes whole named collections.
type Store interface {
	// Load returns the last saved blob for the collection, or ErrNotFound.
	Load(ctx context.Context, collection string) ([]byte, error)
	// Save replaces the collection's blob.
	Save(ctx context.Context, collection string, data []byte) error
	// Delete removes the collection. Deleting an absent collection is a no-op.
	Delete(ctx context.Context, collection string) error
	// Close releases backend resources.
	Close() error
}
