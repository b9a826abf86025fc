package snapshot

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Record is one stored entity.
type Record struct {
	Key     string
	Payload []byte
}

// Set is the records of one entity type.
type Set struct {
	Type string
	// Codec names the codec the payloads were encoded with. Empty means unknown.
	Codec   string
	Records []Record
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func checksum(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

func encodeRecords(records []Record) []byte {
	size := 4
	for _, r := range records {
		size += 8 + len(r.Key) + len(r.Payload)
	}

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(records)))
	for _, r := range records {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.Key)))
		buf = append(buf, r.Key...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.Payload)))
		buf = append(buf, r.Payload...)
	}
	return buf
}

func decodeRecords(data []byte) ([]Record, error) {
	r := reader{data: data}

	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, min(int(count), len(data)/8))
	for i := uint32(0); i < count; i++ {
		key, err := r.bytes()
		if err != nil {
			return nil, fmt.Errorf("record %d key: %w", i, err)
		}
		payload, err := r.bytes()
		if err != nil {
			return nil, fmt.Errorf("record %d payload: %w", i, err)
		}
		records = append(records, Record{Key: string(key), Payload: payload})
	}
	if r.off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(data)-r.off)
	}
	return records, nil
}

type reader struct {
	data []byte
	off  int
}

func (r *reader) u32() (uint32, error) {
	if len(r.data)-r.off < 4 {
		return 0, fmt.Errorf("%w: truncated at %d", ErrCorrupt, r.off)
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if uint64(len(r.data)-r.off) < uint64(n) {
		return nil, fmt.Errorf("%w: truncated at %d", ErrCorrupt, r.off)
	}
	b := r.data[r.off : r.off+int(n)]
	r.off += int(n)
	return b, nil
}
