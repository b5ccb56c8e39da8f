package rlp

import "fmt"

// Stream is a minimal forward-only RLP decoder over an in-memory byte
// slice. It supports the access pattern log.go's decoder needs: open a
// list, read a run of byte strings (optionally entering a nested list),
// and close the list once fully consumed.
type Stream struct {
	data     []byte
	pos      int
	listEnds []int // absolute end offsets of currently open lists
}

// NewStreamFromBytes wraps data for decoding. data is not copied; callers
// must not mutate it while the stream is in use.
func NewStreamFromBytes(data []byte) *Stream {
	return &Stream{data: data}
}

// header describes the RLP item at the stream's current position.
type header struct {
	isList    bool
	headerLen int
	payload   int
}

func (s *Stream) peekHeader() (header, error) {
	if s.pos >= len(s.data) {
		return header{}, errNotEnoughData
	}
	b := s.data[s.pos]
	switch {
	case b < 0x80:
		return header{isList: false, headerLen: 0, payload: 1}, nil
	case b < 0xb8:
		return header{isList: false, headerLen: 1, payload: int(b - 0x80)}, nil
	case b < 0xc0:
		n := int(b - 0xb7)
		size, err := s.readBigEndianLen(s.pos+1, n)
		if err != nil {
			return header{}, err
		}
		return header{isList: false, headerLen: 1 + n, payload: size}, nil
	case b < 0xf8:
		return header{isList: true, headerLen: 1, payload: int(b - 0xc0)}, nil
	default:
		n := int(b - 0xf7)
		size, err := s.readBigEndianLen(s.pos+1, n)
		if err != nil {
			return header{}, err
		}
		return header{isList: true, headerLen: 1 + n, payload: size}, nil
	}
}

func (s *Stream) readBigEndianLen(offset, n int) (int, error) {
	if offset+n > len(s.data) {
		return 0, errNotEnoughData
	}
	size := 0
	for i := 0; i < n; i++ {
		size = size<<8 | int(s.data[offset+i])
	}
	return size, nil
}

// List opens the list at the current position and returns its payload size
// in bytes. Subsequent reads are scoped to the list until ListEnd is called.
func (s *Stream) List() (uint64, error) {
	h, err := s.peekHeader()
	if err != nil {
		return 0, err
	}
	if !h.isList {
		return 0, fmt.Errorf("rlp: expected list, got string")
	}
	start := s.pos + h.headerLen
	end := start + h.payload
	if end > len(s.data) {
		return 0, errNotEnoughData
	}
	s.pos = start
	s.listEnds = append(s.listEnds, end)
	return uint64(h.payload), nil
}

// Bytes reads the next byte-string element and advances past it.
func (s *Stream) Bytes() ([]byte, error) {
	h, err := s.peekHeader()
	if err != nil {
		return nil, err
	}
	if h.isList {
		return nil, fmt.Errorf("rlp: expected string, got list")
	}
	start := s.pos
	if h.headerLen > 0 {
		start += h.headerLen
	}
	end := start + h.payload
	if end > len(s.data) {
		return nil, errNotEnoughData
	}
	out := s.data[start:end]
	s.pos = end
	cpy := make([]byte, len(out))
	copy(cpy, out)
	return cpy, nil
}

// AtListEnd reports whether the stream has consumed the currently open
// list's entire payload (or, with no open list, the entire input).
func (s *Stream) AtListEnd() bool {
	if len(s.listEnds) == 0 {
		return s.pos >= len(s.data)
	}
	return s.pos >= s.listEnds[len(s.listEnds)-1]
}

// ListEnd closes the innermost open list. It is an error to call ListEnd
// before the list's payload has been fully consumed.
func (s *Stream) ListEnd() error {
	n := len(s.listEnds)
	if n == 0 {
		return fmt.Errorf("rlp: no open list")
	}
	end := s.listEnds[n-1]
	if s.pos != end {
		return fmt.Errorf("rlp: list not fully consumed: at %d, end %d", s.pos, end)
	}
	s.listEnds = s.listEnds[:n-1]
	return nil
}
