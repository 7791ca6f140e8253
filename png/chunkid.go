// Package png implements a streaming reader and writer for the PNG
// container format: checksummed chunk framing, zlib-compressed and
// filtered scanlines, bit-level pixel packing, and Adam7 interlacing, as
// specified by the PNG datastream structure.
package png

// ChunkID is a 4-letter PNG chunk tag. It is the second field of the
// chunk header and determines what a chunk's data stream is used for.
// The case of each letter carries a property bit (bit 5 of the byte).
type ChunkID [4]byte

// Chunk IDs handled by the decode/encode orchestration. TRNS is reserved
// for the transparency chunk but no transparency pipeline exists; the
// decoder skips it like any other ancillary chunk.
var (
	IHDR = ChunkID{'I', 'H', 'D', 'R'}
	PLTE = ChunkID{'P', 'L', 'T', 'E'}
	IDAT = ChunkID{'I', 'D', 'A', 'T'}
	IEND = ChunkID{'I', 'E', 'N', 'D'}
	TRNS = ChunkID{'t', 'R', 'N', 'S'}
)

// ParseChunkID validates that b is exactly 4 ASCII letters and returns it
// as a ChunkID.
func ParseChunkID(b []byte) (ChunkID, error) {
	if len(b) != 4 {
		return ChunkID{}, &ChunkIDLenError{Len: len(b)}
	}
	var id ChunkID
	copy(id[:], b)
	for _, c := range id {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return ChunkID{}, &ChunkIDError{Bytes: id}
		}
	}
	return id, nil
}

func (id ChunkID) String() string {
	return string(id[:])
}

// IsAncillary reports whether the chunk is not required to display the
// image, indicated by a lowercase first letter.
func (id ChunkID) IsAncillary() bool {
	return id[0]&0x20 != 0
}

// IsCritical reports whether the chunk is required to display the image,
// indicated by an uppercase first letter.
func (id ChunkID) IsCritical() bool {
	return id[0]&0x20 == 0
}

// IsPrivate reports whether the chunk is privately specified, indicated
// by a lowercase second letter.
func (id ChunkID) IsPrivate() bool {
	return id[1]&0x20 != 0
}

// IsPublic reports whether the chunk is publicly specified, indicated by
// an uppercase second letter.
func (id ChunkID) IsPublic() bool {
	return id[1]&0x20 == 0
}

// IsSafeToCopy reports whether an editor that does not understand the
// chunk may copy it unchanged, indicated by a lowercase fourth letter.
func (id ChunkID) IsSafeToCopy() bool {
	return id[3]&0x20 != 0
}
