// Package patch turns matched method declarations into OpenCore
// find/replace rename patches.
package patch

import (
	"errors"
	"fmt"

	"github.com/blacktop/acpiproxy/pkg/aml"
)

// Marker is the character substituted into renamed method names.
const Marker = 'X'

// ErrAmbiguous is returned when no substitution index yields a
// pairwise-distinct set of replacement names (e.g. two methods with
// identical names).
var ErrAmbiguous = errors.New("no substitution index produces distinct replacements")

// Descriptor is one find/replace byte patch. Find is the full original
// declaration; Replace is the same bytes with the marker substituted at
// one position of the trailing name. Comment is deterministic so store
// entries can be matched across runs.
type Descriptor struct {
	Comment string
	Find    []byte
	Replace []byte
	Mask    string
}

// Synthesize picks the lowest name index in {0,1,2} at which
// substituting the marker keeps every replacement unique, then builds
// one Descriptor per declaration. The same index is used for the whole
// set. The last name character is never substituted: matched sets
// routinely differ only there (ABC1/ABC2), and marking it would erase
// exactly the distinguishing character.
func Synthesize(decls []aml.MethodDeclaration, mask string) ([]Descriptor, error) {
	if len(decls) == 0 {
		return nil, nil
	}

	idx := -1
	for i := range 3 {
		if distinctAt(decls, i) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrAmbiguous
	}

	descs := make([]Descriptor, 0, len(decls))
	for _, d := range decls {
		replace := markName(d, idx)
		descs = append(descs, Descriptor{
			Comment: fmt.Sprintf("SSDT-%s %s to %s", mask, d.Name(), string(replace[len(replace)-4:])),
			Find:    append([]byte(nil), d...),
			Replace: replace,
			Mask:    mask,
		})
	}
	return descs, nil
}

// distinctAt reports whether marking name position i keeps all
// replacement byte sequences pairwise distinct.
func distinctAt(decls []aml.MethodDeclaration, i int) bool {
	seen := make(map[string]struct{}, len(decls))
	for _, d := range decls {
		s := string(markName(d, i))
		if _, ok := seen[s]; ok {
			return false
		}
		seen[s] = struct{}{}
	}
	return true
}

// markName copies a declaration and substitutes the marker at name
// position i, leaving the opcode and length bytes untouched.
func markName(d aml.MethodDeclaration, i int) []byte {
	out := append([]byte(nil), d...)
	out[len(out)-4+i] = Marker
	return out
}
