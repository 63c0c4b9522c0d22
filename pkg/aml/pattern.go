package aml

import "fmt"

// Mask wildcard symbols, one character class each:
//
//	+  any digit
//	!  any digit or _
//	-  any uppercase letter
//	@  any uppercase letter or _
//	?  any uppercase letter or digit
//	*  any uppercase letter, digit, or _
//
// Any other character matches itself. Masks are always exactly 4
// characters, one per NameSeg position.
const maskLen = 4

type charClass int

const (
	classLiteral charClass = iota
	classDigit
	classDigitUnder
	classUpper
	classUpperUnder
	classUpperDigit
	classAny
)

type maskChar struct {
	class   charClass
	literal byte
}

func (mc maskChar) matches(c byte) bool {
	digit := c >= '0' && c <= '9'
	upper := c >= 'A' && c <= 'Z'
	switch mc.class {
	case classDigit:
		return digit
	case classDigitUnder:
		return digit || c == '_'
	case classUpper:
		return upper
	case classUpperUnder:
		return upper || c == '_'
	case classUpperDigit:
		return upper || digit
	case classAny:
		return upper || digit || c == '_'
	default:
		return c == mc.literal
	}
}

// Matcher matches 4-character method names against a compiled mask.
// Positions are independent; there is no cross-position state.
type Matcher struct {
	mask  string
	chars [maskLen]maskChar
}

// Compile translates a 4-character wildcard mask into a Matcher.
func Compile(mask string) (*Matcher, error) {
	if !ValidMask(mask) {
		return nil, fmt.Errorf("invalid mask %q: must be exactly 4 characters from A-Z 0-9 _ + ! - @ ? *", mask)
	}
	m := &Matcher{mask: mask}
	for i := range maskLen {
		switch mask[i] {
		case '+':
			m.chars[i] = maskChar{class: classDigit}
		case '!':
			m.chars[i] = maskChar{class: classDigitUnder}
		case '-':
			m.chars[i] = maskChar{class: classUpper}
		case '@':
			m.chars[i] = maskChar{class: classUpperUnder}
		case '?':
			m.chars[i] = maskChar{class: classUpperDigit}
		case '*':
			m.chars[i] = maskChar{class: classAny}
		default:
			m.chars[i] = maskChar{class: classLiteral, literal: mask[i]}
		}
	}
	return m, nil
}

// Matches reports whether a 4-character name satisfies the mask.
func (m *Matcher) Matches(name string) bool {
	if len(name) != maskLen {
		return false
	}
	for i := range maskLen {
		if !m.chars[i].matches(name[i]) {
			return false
		}
	}
	return true
}

// Mask returns the mask the Matcher was compiled from.
func (m *Matcher) Mask() string {
	return m.mask
}

// ValidMask reports whether mask is a well-formed 4-character wildcard
// mask.
func ValidMask(mask string) bool {
	if len(mask) != maskLen {
		return false
	}
	for i := range maskLen {
		c := mask[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_', c == '+', c == '!', c == '-', c == '@', c == '?', c == '*':
		default:
			return false
		}
	}
	return true
}

// Filter keeps the declarations whose names satisfy the matcher,
// preserving discovery order.
func Filter(decls []MethodDeclaration, m *Matcher) []MethodDeclaration {
	var out []MethodDeclaration
	for _, d := range decls {
		if m.Matches(d.Name()) {
			out = append(out, d)
		}
	}
	return out
}
