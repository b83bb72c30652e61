package frame

import (
	"fmt"
	"slices"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/danmuck/iacctl/internal/protocol/message"
	"github.com/danmuck/iacctl/internal/protocol/payload"
	"github.com/danmuck/iacctl/internal/protocol/schema"
)

// Join concatenates pages in index order. Duplicate indices are dropped,
// keeping the first seen. Indices outside [0, total) are malformed. A gap yields *protocol.IncompleteTransmissionError
// listing the pages that did arrive.
func Join(chunks []*payload.Chunked) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, protocol.ErrNoFrames
	}
	total := chunks[0].TotalPages
	if total <= 0 {
		return nil, fmt.Errorf("%w: total pages %d", protocol.ErrMalformedFrame, total)
	}
	byIndex := make(map[int]*payload.Chunked, len(chunks))
	for _, c := range chunks {
		if c.TotalPages != total {
			return nil, fmt.Errorf("%w: %d and %d", protocol.ErrInconsistentTotalPages, total, c.TotalPages)
		}
		if c.PageIndex < 0 || c.PageIndex >= total {
			return nil, fmt.Errorf("%w: page %d of %d", protocol.ErrMalformedFrame, c.PageIndex, total)
		}
		if _, seen := byIndex[c.PageIndex]; !seen {
			byIndex[c.PageIndex] = c
		}
	}

	available := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		available = append(available, idx)
	}
	slices.Sort(available)
	if len(available) < total {
		return nil, &protocol.IncompleteTransmissionError{AvailablePages: available, TotalPages: total}
	}

	var raw []byte
	for _, idx := range available {
		raw = append(raw, byIndex[idx].Bytes...)
	}
	return raw, nil
}

// Reassemble rebuilds the Full payload split across chunks.
func Reassemble(codec message.Codec, reg *schema.Registry, chunks []*payload.Chunked, ids message.IDGenerator) (*payload.Full, error) {
	raw, err := Join(chunks)
	if err != nil {
		return nil, err
	}
	return payload.ParseFullBytes(codec, reg, raw, ids)
}
