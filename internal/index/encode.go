package index

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"kyon/internal/domain/content"
)

// freshKey sorts like Fresher under bbolt's byte order:
// invDay(8) + title + 0x00 + id. Unparseable dates sort last.
func freshKey(m content.PostMeta) []byte {
	day := int64(math.MinInt64)
	if t, err := time.Parse(time.DateOnly, m.Freshness()); err == nil {
		day = t.Unix()
	}
	buf := make([]byte, 8, 8+len(m.Title)+1+len(m.ID))
	// flip the sign bit so negative times order below positive ones
	binary.BigEndian.PutUint64(buf, ^(uint64(day) ^ 1<<63))
	buf = append(buf, m.Title...)
	buf = append(buf, 0x00)
	buf = append(buf, m.ID...)
	return buf
}

func idFromFreshKey(k []byte) string {
	if len(k) < 8+1 {
		return ""
	}
	i := bytes.LastIndexByte(k[8:], 0x00)
	if i < 0 {
		return ""
	}
	return string(k[8+i+1:])
}

func seqKey(n int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}
