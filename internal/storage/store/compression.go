package store

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4"
)

// LZ4Compressor implements LZ4 block compression. The uncompressed size is
// framed as a 4-byte big-endian prefix so decompression can allocate exactly.
type LZ4Compressor struct{}

func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{0, 0, 0, 0}, nil
	}

	compressed := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(compressed[:4], uint32(len(data)))

	n, err := lz4.CompressBlock(data, compressed[4:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 {
		// CompressBlock reports zero for incompressible input.
		return nil, errIncompressible
	}

	return compressed[:4+n], nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("lz4 frame too short: %d bytes", len(data))
	}

	size := binary.BigEndian.Uint32(data[:4])
	if size == 0 {
		return []byte{}, nil
	}

	decompressed := make([]byte, size)
	n, err := lz4.UncompressBlock(data[4:], decompressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	return decompressed[:n], nil
}

var errIncompressible = fmt.Errorf("input not compressible")
