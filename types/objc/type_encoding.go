package objc

import (
	"fmt"
	"strings"
)

// ref - https://developer.apple.com/library/archive/documentation/Cocoa/Conceptual/ObjCRuntimeGuide/Articles/ocrtTypeEncodings.html
// ref - https://developer.apple.com/library/archive/documentation/Cocoa/Conceptual/ObjCRuntimeGuide/Articles/ocrtPropertyIntrospection.html

// EncodingType packs a type category (bits 0-7), method qualifiers (bits 8-15)
// and property attributes (bits 16-23) into one value.
type EncodingType uint32

const (
	EncodingTypeMask       EncodingType = 0xFF
	EncodingTypeUnknown    EncodingType = 0
	EncodingTypeVoid       EncodingType = 1
	EncodingTypeBool       EncodingType = 2
	EncodingTypeInt8       EncodingType = 3 // char / BOOL
	EncodingTypeUInt8      EncodingType = 4
	EncodingTypeInt16      EncodingType = 5
	EncodingTypeUInt16     EncodingType = 6
	EncodingTypeInt32      EncodingType = 7
	EncodingTypeUInt32     EncodingType = 8
	EncodingTypeInt64      EncodingType = 9
	EncodingTypeUInt64     EncodingType = 10
	EncodingTypeFloat      EncodingType = 11
	EncodingTypeDouble     EncodingType = 12
	EncodingTypeLongDouble EncodingType = 13
	EncodingTypeObject     EncodingType = 14 // id
	EncodingTypeClass      EncodingType = 15
	EncodingTypeSEL        EncodingType = 16
	EncodingTypeBlock      EncodingType = 17
	EncodingTypePointer    EncodingType = 18 // void*
	EncodingTypeStruct     EncodingType = 19
	EncodingTypeUnion      EncodingType = 20
	EncodingTypeCString    EncodingType = 21 // char*
	EncodingTypeCArray     EncodingType = 22 // char[10]
)

const (
	EncodingTypeQualifierMask   EncodingType = 0xFF00
	EncodingTypeQualifierConst  EncodingType = 1 << 8
	EncodingTypeQualifierIn     EncodingType = 1 << 9
	EncodingTypeQualifierInout  EncodingType = 1 << 10
	EncodingTypeQualifierOut    EncodingType = 1 << 11
	EncodingTypeQualifierBycopy EncodingType = 1 << 12
	EncodingTypeQualifierByref  EncodingType = 1 << 13
	EncodingTypeQualifierOneway EncodingType = 1 << 14
)

const (
	EncodingTypePropertyMask         EncodingType = 0xFF0000
	EncodingTypePropertyReadonly     EncodingType = 1 << 16
	EncodingTypePropertyCopy         EncodingType = 1 << 17
	EncodingTypePropertyRetain       EncodingType = 1 << 18
	EncodingTypePropertyNonatomic    EncodingType = 1 << 19
	EncodingTypePropertyWeak         EncodingType = 1 << 20
	EncodingTypePropertyCustomGetter EncodingType = 1 << 21 // getter=
	EncodingTypePropertyCustomSetter EncodingType = 1 << 22 // setter=
	EncodingTypePropertyDynamic      EncodingType = 1 << 23 // @dynamic
)

var categoryNames = [...]string{
	EncodingTypeUnknown:    "unknown",
	EncodingTypeVoid:       "void",
	EncodingTypeBool:       "bool",
	EncodingTypeInt8:       "int8",
	EncodingTypeUInt8:      "uint8",
	EncodingTypeInt16:      "int16",
	EncodingTypeUInt16:     "uint16",
	EncodingTypeInt32:      "int32",
	EncodingTypeUInt32:     "uint32",
	EncodingTypeInt64:      "int64",
	EncodingTypeUInt64:     "uint64",
	EncodingTypeFloat:      "float",
	EncodingTypeDouble:     "double",
	EncodingTypeLongDouble: "long double",
	EncodingTypeObject:     "object",
	EncodingTypeClass:      "class",
	EncodingTypeSEL:        "SEL",
	EncodingTypeBlock:      "block",
	EncodingTypePointer:    "pointer",
	EncodingTypeStruct:     "struct",
	EncodingTypeUnion:      "union",
	EncodingTypeCString:    "cstring",
	EncodingTypeCArray:     "carray",
}

var flagNames = []struct {
	flag EncodingType
	name string
}{
	{EncodingTypeQualifierConst, "const"},
	{EncodingTypeQualifierIn, "in"},
	{EncodingTypeQualifierInout, "inout"},
	{EncodingTypeQualifierOut, "out"},
	{EncodingTypeQualifierBycopy, "bycopy"},
	{EncodingTypeQualifierByref, "byref"},
	{EncodingTypeQualifierOneway, "oneway"},
	{EncodingTypePropertyReadonly, "readonly"},
	{EncodingTypePropertyCopy, "copy"},
	{EncodingTypePropertyRetain, "retain"},
	{EncodingTypePropertyNonatomic, "nonatomic"},
	{EncodingTypePropertyWeak, "weak"},
	{EncodingTypePropertyCustomGetter, "getter"},
	{EncodingTypePropertyCustomSetter, "setter"},
	{EncodingTypePropertyDynamic, "dynamic"},
}

// type qualifiers that may prefix a method argument or return type
var typeQualifiers = map[byte]EncodingType{
	'r': EncodingTypeQualifierConst,
	'n': EncodingTypeQualifierIn,
	'N': EncodingTypeQualifierInout,
	'o': EncodingTypeQualifierOut,
	'O': EncodingTypeQualifierBycopy,
	'R': EncodingTypeQualifierByref,
	'V': EncodingTypeQualifierOneway,
}

var typeEncoding = map[byte]EncodingType{
	'v': EncodingTypeVoid,
	'B': EncodingTypeBool,
	'c': EncodingTypeInt8,
	'C': EncodingTypeUInt8,
	's': EncodingTypeInt16,
	'S': EncodingTypeUInt16,
	'i': EncodingTypeInt32,
	'I': EncodingTypeUInt32,
	'l': EncodingTypeInt32, // long is 32 bits in the encoding, even on LP64
	'L': EncodingTypeUInt32,
	'q': EncodingTypeInt64,
	'Q': EncodingTypeUInt64,
	'f': EncodingTypeFloat,
	'd': EncodingTypeDouble,
	'D': EncodingTypeLongDouble,
	'#': EncodingTypeClass,
	':': EncodingTypeSEL,
	'*': EncodingTypeCString,
	'^': EncodingTypePointer,
	'[': EncodingTypeCArray,
	'(': EncodingTypeUnion,
	'{': EncodingTypeStruct,
}

// GetEncodingType classifies a type encoding string. Leading method
// qualifiers are folded into the qualifier bits; anything it does not
// recognize is EncodingTypeUnknown.
func GetEncodingType(encoding string) EncodingType {
	var qualifier EncodingType
	i := 0
	for ; i < len(encoding); i++ {
		q, ok := typeQualifiers[encoding[i]]
		if !ok {
			break
		}
		qualifier |= q
	}

	rest := encoding[i:]
	if len(rest) == 0 {
		return EncodingTypeUnknown | qualifier
	}
	if rest[0] == '@' {
		if rest == "@?" {
			return EncodingTypeBlock | qualifier
		}
		return EncodingTypeObject | qualifier
	}
	if typ, ok := typeEncoding[rest[0]]; ok {
		return typ | qualifier
	}
	return EncodingTypeUnknown | qualifier
}

// Category returns the type category with all flag bits cleared.
func (e EncodingType) Category() EncodingType {
	return e & EncodingTypeMask
}

// Qualifiers returns only the method qualifier bits.
func (e EncodingType) Qualifiers() EncodingType {
	return e & EncodingTypeQualifierMask
}

// PropertyAttributes returns only the property attribute bits.
func (e EncodingType) PropertyAttributes() EncodingType {
	return e & EncodingTypePropertyMask
}

// Has reports whether every bit of flag is set.
func (e EncodingType) Has(flag EncodingType) bool {
	return e&flag == flag
}

// IsObjectLike reports whether the category is an object, class or block reference.
func (e EncodingType) IsObjectLike() bool {
	switch e.Category() {
	case EncodingTypeObject, EncodingTypeClass, EncodingTypeBlock:
		return true
	}
	return false
}

// IsNumeric reports whether the category is a C number (bool, integer or floating point).
func (e EncodingType) IsNumeric() bool {
	c := e.Category()
	return c >= EncodingTypeBool && c <= EncodingTypeLongDouble
}

func (e EncodingType) String() string {
	var out []string
	if c := int(e.Category()); c < len(categoryNames) {
		out = append(out, categoryNames[c])
	} else {
		out = append(out, fmt.Sprintf("category(%d)", c))
	}
	for _, f := range flagNames {
		if e&f.flag != 0 {
			out = append(out, f.name)
		}
	}
	return strings.Join(out, "|")
}

// typeLen returns the length of the first complete type encoding in s,
// qualifiers included. It returns 0 only for an empty string.
func typeLen(s string) int {
	i := 0
	for i < len(s) {
		if _, ok := typeQualifiers[s[i]]; !ok && s[i] != 'A' && s[i] != 'j' {
			break
		}
		i++
	}
	if i >= len(s) {
		return i
	}

	switch s[i] {
	case '^': /* pointers */
		return i + 1 + typeLen(s[i+1:])
	case '@': /* objects */
		i++
		if i < len(s) && s[i] == '"' {
			if end := strings.IndexByte(s[i+1:], '"'); end >= 0 {
				return i + end + 2
			}
			return len(s)
		}
		if i < len(s) && s[i] == '?' { /* blocks */
			i++
			if i < len(s) && s[i] == '<' {
				return subtypeUntil(s, i)
			}
		}
		return i
	case '[', '{', '(': /* arrays, structures, unions */
		return subtypeUntil(s, i)
	case 'b': /* bit fields */
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i
	default: /* basic types */
		return i + 1
	}
}

// subtypeUntil returns the index just past the bracket that closes the one
// at s[start], or len(s) when the encoding is truncated.
func subtypeUntil(s string, start int) int {
	level := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '"':
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return len(s)
			}
			i += end + 1
		case '[', '{', '(', '<':
			level++
		case ']', '}', ')', '>':
			level--
			if level == 0 {
				return i + 1
			}
		}
	}
	return len(s)
}

// SplitMethodTypes splits a method type encoding such as "v24@0:8@16" into
// its return type and argument types, dropping stack offsets.
func SplitMethodTypes(types string) (string, []string) {
	var parts []string
	for s := types; len(s) > 0; {
		n := typeLen(s)
		if n == 0 {
			break
		}
		parts = append(parts, s[:n])
		// GNU register hints and (possibly negative) offsets
		s = strings.TrimLeft(s[n:], "+-0123456789")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}
