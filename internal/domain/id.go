package domain

import (
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"
)

// idKey is fixed so identifiers stay stable across runs and hosts.
var idKey = []byte("sens-scan/object-identifier-key!")

// NewRunID generates a UUIDv7 string identifying one classification run.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ObjectID returns the content-derived identifier of schema.table.column.
func ObjectID(schema, table, column string) string {
	return hashName(schema + "." + table + "." + column)
}

// TableID returns the content-derived identifier of schema.table.
func TableID(schema, table string) string {
	return hashName(schema + "." + table)
}

func hashName(name string) string {
	h, err := highwayhash.New64(idKey)
	if err != nil {
		// only returned for a key that is not 32 bytes long
		panic(err)
	}
	_, _ = h.Write([]byte(name))
	return hex.EncodeToString(h.Sum(nil))
}
