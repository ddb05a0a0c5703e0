package protocol

import "bytes"

// maxLineSize caps a buffered partial line; longer lines are discarded
const maxLineSize = 10 * 1024 * 1024

// LineSplitter turns arbitrary output chunks into complete lines.
// It is not safe for concurrent use; each read loop owns one.
type LineSplitter struct {
	buf      []byte
	overflow bool
}

// Push appends a chunk and returns every line it completed, without the
// trailing newline (and carriage return)
func (s *LineSplitter) Push(chunk []byte) [][]byte {
	var lines [][]byte
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			s.append(chunk)
			break
		}
		s.append(chunk[:i])
		if !s.overflow {
			lines = append(lines, trimCR(s.buf))
		}
		s.buf = nil
		s.overflow = false
		chunk = chunk[i+1:]
	}
	return lines
}

// Flush returns the pending partial line, if any
func (s *LineSplitter) Flush() []byte {
	line := s.buf
	overflow := s.overflow
	s.buf = nil
	s.overflow = false
	if overflow || len(line) == 0 {
		return nil
	}
	return trimCR(line)
}

func (s *LineSplitter) append(b []byte) {
	if s.overflow {
		return
	}
	if len(s.buf)+len(b) > maxLineSize {
		s.buf = nil
		s.overflow = true
		return
	}
	s.buf = append(s.buf, b...)
}

func trimCR(b []byte) []byte {
	return bytes.TrimSuffix(b, []byte{'\r'})
}
