package revshare

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	registryHeaderSize = 4  // num_entries(4)
	registryEntrySize  = 28 // address(20) + weight(8)
)

// SerializeEntries encodes an ordered share set to binary format.
func SerializeEntries(entries []Entry) ([]byte, error) {
	if len(entries) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyEntries, len(entries))
	}
	buf := make([]byte, registryHeaderSize+registryEntrySize*len(entries))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(entries)))

	offset := registryHeaderSize
	for _, entry := range entries {
		copy(buf[offset:offset+20], entry.Address[:])
		offset += 20
		binary.BigEndian.PutUint64(buf[offset:offset+8], entry.Weight)
		offset += 8
	}
	return buf, nil
}

// DeserializeEntries decodes binary data produced by SerializeEntries.
func DeserializeEntries(data []byte) ([]Entry, error) {
	if len(data) < registryHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidRegistryData, len(data))
	}
	numEntries := int(binary.BigEndian.Uint32(data[0:4]))

	expectedSize := registryHeaderSize + registryEntrySize*numEntries
	if len(data) != expectedSize {
		return nil, fmt.Errorf("%w: expected %d bytes for %d entries, got %d",
			ErrInvalidRegistryData, expectedSize, numEntries, len(data))
	}

	entries := make([]Entry, numEntries)
	offset := registryHeaderSize
	for i := range entries {
		copy(entries[i].Address[:], data[offset:offset+20])
		offset += 20
		entries[i].Weight = binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
	}
	return entries, nil
}
