// Package aml finds method declarations inside compiled ACPI tables.
//
// It is not an AML parser; it recognizes just enough of the MethodOp
// encoding (opcode, PkgLength, 4-char NameSeg) to locate named methods
// in an otherwise opaque byte stream.
package aml

import (
	"fmt"
	"io"
	"os"
)

// MethodOp introduces a method definition in AML.
const MethodOp = 0x14

// MethodDeclaration is the raw bytes of a method header: the opcode,
// 0-3 trailing PkgLength bytes and the 4 name bytes.
type MethodDeclaration []byte

// Name returns the method's 4-character NameSeg.
func (m MethodDeclaration) Name() string {
	return string(m[len(m)-4:])
}

func (m MethodDeclaration) String() string {
	return fmt.Sprintf("%s (%X)", m.Name(), []byte(m))
}

// scanner states
const (
	searching = iota
	readingLength
	readingName
)

// Scan walks the stream and collects every method declaration it can
// find. The PkgLength lead byte's top two bits give the number of
// additional length bytes; a name byte outside the NameSeg alphabet
// means the opcode was a false match, in which case the cursor rewinds
// to the byte before the failing read so overlapping candidates are
// retried. A candidate truncated by EOF is dropped. Zero matches is a
// valid result, not an error.
func Scan(r io.ReadSeeker) ([]MethodDeclaration, error) {
	var (
		decls     []MethodDeclaration
		buf       []byte
		remaining int
		state     = searching
		b         [1]byte
	)

	for {
		prev, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("failed to get stream position: %v", err)
		}
		if _, err := r.Read(b[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read stream: %v", err)
		}
		c := b[0]

		// wait for a method to begin
		if len(buf) == 0 && c != MethodOp {
			continue
		}

		buf = append(buf, c)
		if len(buf) == 1 {
			continue // opcode
		}

		// PkgLength lead byte dictates how many length bytes follow
		if len(buf) == 2 {
			remaining = int(c >> 6)
			if remaining > 0 {
				state = readingLength
			} else {
				remaining = 4
				state = readingName
			}
			continue
		}

		// false opcode match: rewind and search again
		if state == readingName && !validNameByte(c) {
			buf = nil
			state = searching
			if _, err := r.Seek(prev, io.SeekStart); err != nil {
				return nil, fmt.Errorf("failed to rewind stream: %v", err)
			}
			continue
		}

		if remaining > 1 {
			remaining--
			continue
		}

		if state == readingName {
			decl := make(MethodDeclaration, len(buf))
			copy(decl, buf)
			decls = append(decls, decl)
			buf = nil
			state = searching
			continue
		}

		// length bytes done, the name starts next
		remaining = 4
		state = readingName
	}

	return decls, nil
}

// ScanFile scans a table read from disk.
func ScanFile(path string) ([]MethodDeclaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open AML file: %v", err)
	}
	defer f.Close()
	return Scan(f)
}

// validNameByte reports whether b may appear in an ACPI NameSeg.
func validNameByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') ||
		(b >= 'a' && b <= 'z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}
