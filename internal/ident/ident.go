// Package ident derives short content identifiers for history entries.
//
// An identifier is the hex prefix of a BLAKE3 digest over a stable byte
// encoding of (payload digest, timestamp, parent id, nonce). It is a stable
// external reference, not a security primitive.
package ident

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/javanhut/ivaldi-history/internal/cas"
	"lukechampine.com/blake3"
)

// Size is the number of digest bytes kept in an identifier.
const Size = 8

// Input holds everything an identifier is derived from.
type Input struct {
	Payload   cas.Hash  // digest of the encoded state
	Timestamp time.Time // creation time
	ParentID  string    // previous entry on the branch, "" if none
	Nonce     uint64    // bumped by the caller to resolve collisions
}

// CanonicalBytes returns the stable byte encoding of the input.
//
// Canonical encoding format (version 1):
//
//	uvarint(1)               // version
//	32 bytes Payload         // state digest
//	varint(UnixNano)         // timestamp (signed)
//	uvarint(len(ParentID))   // parent id length
//	bytes(ParentID)          // parent id
//	uvarint(Nonce)           // collision nonce
func (in Input) CanonicalBytes() []byte {
	var buf bytes.Buffer
	scratch := make([]byte, binary.MaxVarintLen64)

	n := binary.PutUvarint(scratch, 1)
	buf.Write(scratch[:n])

	buf.Write(in.Payload[:])

	n = binary.PutVarint(scratch, in.Timestamp.UnixNano())
	buf.Write(scratch[:n])

	n = binary.PutUvarint(scratch, uint64(len(in.ParentID)))
	buf.Write(scratch[:n])
	buf.WriteString(in.ParentID)

	n = binary.PutUvarint(scratch, in.Nonce)
	buf.Write(scratch[:n])

	return buf.Bytes()
}

// Derive computes the identifier for in.
func Derive(in Input) string {
	sum := blake3.Sum256(in.CanonicalBytes())
	return hex.EncodeToString(sum[:Size])
}

// Unique derives an identifier for in, bumping the nonce until taken
// reports the identifier as free.
func Unique(in Input, taken func(string) bool) string {
	for {
		id := Derive(in)
		if !taken(id) {
			return id
		}
		in.Nonce++
	}
}
