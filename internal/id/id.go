package id

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"
)

// New returns a random UUID v4 string.
func New() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// sortableEncoding is Crockford's Base32 alphabet (no I, L, O, U).
var sortableEncoding = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// SortableLen is the length of identifiers returned by Sortable.
const SortableLen = 26

var (
	sortableMu     sync.Mutex
	sortableLastMs uint64
	sortableLast   [10]byte
)

// Sortable returns a 26-character identifier made of a 48-bit millisecond
// timestamp followed by 80 random bits. Identifiers generated by one process
// are strictly increasing: within the same millisecond the random part is
// incremented instead of redrawn.
func Sortable() string {
	return sortableAt(time.Now())
}

func sortableAt(now time.Time) string {
	sortableMu.Lock()
	defer sortableMu.Unlock()

	ms := uint64(now.UnixMilli())
	if ms <= sortableLastMs {
		ms = sortableLastMs
		increment(sortableLast[:])
	} else {
		sortableLastMs = ms
		_, _ = rand.Read(sortableLast[:])
	}

	var raw [16]byte
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], ms)
	copy(raw[:6], ts[2:])
	copy(raw[6:], sortableLast[:])
	return sortableEncoding.EncodeToString(raw[:])
}

// SortableTime extracts the timestamp embedded in a Sortable identifier.
func SortableTime(s string) (time.Time, bool) {
	if len(s) != SortableLen {
		return time.Time{}, false
	}
	raw, err := sortableEncoding.DecodeString(s)
	if err != nil || len(raw) != 16 {
		return time.Time{}, false
	}
	var ts [8]byte
	copy(ts[2:], raw[:6])
	return time.UnixMilli(int64(binary.BigEndian.Uint64(ts[:]))), true
}

// increment adds one to a big-endian byte slice, wrapping on overflow.
func increment(b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}
