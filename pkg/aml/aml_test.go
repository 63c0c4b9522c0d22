package aml

import (
	"bytes"
	"reflect"
	"testing"
)

// method builds a method header: opcode, PkgLength lead byte, any extra
// length bytes, then the 4-char name.
func method(lead byte, extra []byte, name string) []byte {
	out := []byte{MethodOp, lead}
	out = append(out, extra...)
	out = append(out, name...)
	return out
}

func TestScan(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		want   []string
	}{
		{
			name:   "empty stream",
			stream: nil,
			want:   nil,
		},
		{
			name:   "no length bytes",
			stream: append([]byte{0xAA, 0xBB}, method(0x08, nil, "ABC1")...),
			want:   []string{"ABC1"},
		},
		{
			name:   "one extra length byte",
			stream: method(0x48, []byte{0x12}, "GPI0"),
			want:   []string{"GPI0"},
		},
		{
			name:   "three extra length bytes",
			stream: method(0xC1, []byte{0x01, 0x02, 0x03}, "XYZ9"),
			want:   []string{"XYZ9"},
		},
		{
			name: "multiple methods with junk between",
			stream: bytes.Join([][]byte{
				{0x00, 0x5B, 0x82},
				method(0x08, nil, "ABC1"),
				{0xFF, 0x13},
				method(0x08, nil, "ABC2"),
				{0x07},
				method(0x48, []byte{0x22}, "XYZ9"),
			}, nil),
			want: []string{"ABC1", "ABC2", "XYZ9"},
		},
		{
			name:   "lowercase name bytes accepted",
			stream: method(0x08, nil, "ab_9"),
			want:   []string{"ab_9"},
		},
		{
			name: "false opcode fails name validation and scanning resumes",
			stream: bytes.Join([][]byte{
				{0x14, 0x08, 'A', 'B', 0x01}, // invalid 2 bytes into the name
				method(0x08, nil, "DEFG"),
			}, nil),
			want: []string{"DEFG"},
		},
		{
			name: "real opcode inside a failed candidate is not skipped",
			// the first 0x14's name phase hits the second 0x14 (invalid
			// name byte); the rewind re-reads it as a fresh opcode
			stream: []byte{0x14, 0x08, 0x14, 0x08, 'A', 'B', 'C', 'D'},
			want:   []string{"ABCD"},
		},
		{
			name:   "truncated candidate at EOF is dropped",
			stream: []byte{0x14, 0x08, 'A', 'B'},
			want:   nil,
		},
		{
			name:   "truncated length bytes at EOF are dropped",
			stream: []byte{0x00, 0x14, 0xC1, 0x01},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls, err := Scan(bytes.NewReader(tt.stream))
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			var got []string
			for _, d := range decls {
				got = append(got, d.Name())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan() names = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanKeepsFullRecordBytes(t *testing.T) {
	rec := method(0x48, []byte{0x12}, "GPI0")
	decls, err := Scan(bytes.NewReader(append([]byte{0xEE}, rec...)))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(decls) != 1 {
		t.Fatalf("Scan() returned %d declarations, want 1", len(decls))
	}
	if !bytes.Equal(decls[0], rec) {
		t.Errorf("Scan() bytes = %X, want %X", []byte(decls[0]), rec)
	}
	if decls[0].Name() != "GPI0" {
		t.Errorf("Name() = %q, want %q", decls[0].Name(), "GPI0")
	}
}

func TestScanDeterministic(t *testing.T) {
	stream := bytes.Join([][]byte{
		{0x00, 0x14, 0x30}, // false opcode right before a real one
		method(0x08, nil, "_STA"),
		{0x61},
		method(0xC2, []byte{0x01, 0x02, 0x03}, "_Q11"),
	}, nil)

	first, err := Scan(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	var names []string
	for _, d := range first {
		names = append(names, d.Name())
	}
	if !reflect.DeepEqual(names, []string{"_STA", "_Q11"}) {
		t.Fatalf("Scan() names = %v, want [_STA _Q11]", names)
	}
	for i := 0; i < 10; i++ {
		again, err := Scan(bytes.NewReader(stream))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Scan() run %d = %v, want %v", i, again, first)
		}
	}
}

func TestScanNameBytesAlwaysValid(t *testing.T) {
	// every byte value twice, so plenty of stray MethodOp bytes
	stream := make([]byte, 0, 512)
	for i := 0; i < 2; i++ {
		for b := 0; b < 256; b++ {
			stream = append(stream, byte(b))
		}
	}
	decls, err := Scan(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	for _, d := range decls {
		for _, c := range []byte(d.Name()) {
			if !validNameByte(c) {
				t.Errorf("declaration %X has invalid name byte %#02x", []byte(d), c)
			}
		}
	}
}
