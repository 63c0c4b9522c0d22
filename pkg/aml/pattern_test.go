package aml

import (
	"reflect"
	"testing"
)

func TestValidMask(t *testing.T) {
	tests := []struct {
		mask string
		want bool
	}{
		{"OC++", true},
		{"_Q!!", true},
		{"----", true},
		{"@?*!", true},
		{"ABC", false},
		{"ABCDE", false},
		{"", false},
		{"abc+", false},
		{"AB#1", false},
	}
	for _, tt := range tests {
		t.Run(tt.mask, func(t *testing.T) {
			if got := ValidMask(tt.mask); got != tt.want {
				t.Errorf("ValidMask(%q) = %v, want %v", tt.mask, got, tt.want)
			}
		})
	}
}

func TestCompileInvalid(t *testing.T) {
	for _, mask := range []string{"", "AB", "ABCDE", "abcd", "A C1"} {
		if _, err := Compile(mask); err == nil {
			t.Errorf("Compile(%q) expected error", mask)
		}
	}
}

func TestMatcher(t *testing.T) {
	tests := []struct {
		name string
		mask string
		in   string
		want bool
	}{
		{"literal match", "OSYS", "OSYS", true},
		{"literal mismatch", "OSYS", "OSYA", false},
		{"literal is case sensitive", "OSYS", "osys", false},
		{"plus matches digit", "OC++", "OC01", true},
		{"plus matches digit again", "OC++", "OC99", true},
		{"plus rejects letter", "OC++", "OCAB", false},
		{"bang matches digit", "_Q!!", "_Q01", true},
		{"bang matches underscore", "_Q!!", "_Q_1", true},
		{"bang rejects letter", "_Q!!", "_QA1", false},
		{"dash matches upper", "-BC1", "ABC1", true},
		{"dash rejects digit", "-BC1", "1BC1", false},
		{"dash rejects underscore", "-BC1", "_BC1", false},
		{"at matches upper", "@BC1", "ZBC1", true},
		{"at matches underscore", "@BC1", "_BC1", true},
		{"at rejects digit", "@BC1", "9BC1", false},
		{"question matches upper", "?BC1", "QBC1", true},
		{"question matches digit", "?BC1", "7BC1", true},
		{"question rejects underscore", "?BC1", "_BC1", false},
		{"star matches upper", "*BC1", "ABC1", true},
		{"star matches digit", "*BC1", "5BC1", true},
		{"star matches underscore", "*BC1", "_BC1", true},
		{"star rejects lowercase", "*BC1", "aBC1", false},
		{"wrong length", "OC++", "OC0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.mask)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.mask, err)
			}
			if got := m.Matches(tt.in); got != tt.want {
				t.Errorf("Compile(%q).Matches(%q) = %v, want %v", tt.mask, tt.in, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	decls := []MethodDeclaration{
		MethodDeclaration(method(0x08, nil, "ABC1")),
		MethodDeclaration(method(0x08, nil, "XYZ9")),
		MethodDeclaration(method(0x08, nil, "ABC2")),
	}
	m, err := Compile("ABC+")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	got := Filter(decls, m)
	var names []string
	for _, d := range got {
		names = append(names, d.Name())
	}
	if !reflect.DeepEqual(names, []string{"ABC1", "ABC2"}) {
		t.Errorf("Filter() = %v, want [ABC1 ABC2]", names)
	}
}
