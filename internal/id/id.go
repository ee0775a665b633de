// Package id generates ULIDs for outbound notification messages.
package id

import (
	"encoding/binary"
	"time"

	"github.com/oklog/ulid/v2"
)

// Derive returns a deterministic ULID for the record seq stamped at t, so
// the same record always maps to the same id. Ids of records made in order
// sort in that order.
func Derive(t time.Time, seq int64) string {
	var entropy [10]byte
	binary.BigEndian.PutUint64(entropy[2:], uint64(seq))

	var u ulid.ULID
	if err := u.SetTime(ulid.Timestamp(t.UTC())); err != nil {
		// only for times past the year 10889
		panic(err)
	}
	_ = u.SetEntropy(entropy[:])
	return u.String()
}

// Time extracts the timestamp from an id made by Derive.
func Time(s string) (time.Time, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(id.Time()).UTC(), nil
}
