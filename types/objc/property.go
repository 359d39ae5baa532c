package objc

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	propertyReadOnly  = 'R' // property is read-only.
	propertyBycopy    = 'C' // property is a copy of the value last assigned
	propertyByref     = '&' // property is a reference to the value last assigned
	propertyDynamic   = 'D' // property is dynamic
	propertyGetter    = 'G' // followed by getter selector name
	propertySetter    = 'S' // followed by setter selector name
	propertyIVar      = 'V' // followed by instance variable  name
	propertyType      = 'T' // followed by old-style type encoding.
	propertyWeak      = 'W' // 'weak' property
	propertyNonAtomic = 'N' // property non-atomic
)

// PropertyAttribute is one comma separated entry of a property attribute
// string: a one character name and the remainder as its value.
type PropertyAttribute struct {
	Name  byte
	Value string
}

// PropertyInfo describes one declared property.
type PropertyInfo struct {
	Property     Property
	Name         string
	Type         EncodingType // category plus property attribute bits
	TypeEncoding string
	IvarName     string   // empty for computed or @dynamic properties
	ClassName    string   // class named by an object type, e.g. "User" for @"User"
	Cls          Class    // ClassName resolved through the runtime, may be Nil
	Protocols    []string // protocols named by an object type, e.g. @"id<P1><P2>"
	Getter       string
	Setter       string
}

// NewPropertyInfo reads p from rt and resolves the class of an object typed
// property when the runtime knows it.
func NewPropertyInfo(rt Runtime, p Property) *PropertyInfo {
	info := ParseProperty(rt.PropertyName(p), rt.PropertyAttributes(p))
	info.Property = p
	if info.ClassName != "" {
		info.Cls = rt.LookupClass(info.ClassName)
	}
	return info
}

// ParseProperty builds a PropertyInfo from a property name and its composite
// attribute string, e.g. `T@"User",&,N,V_user`. It never fails: attributes it
// does not understand are ignored.
func ParseProperty(name, attrs string) *PropertyInfo {
	info := &PropertyInfo{Name: name}

	var typ EncodingType
	for _, attr := range SplitPropertyAttributes(attrs) {
		switch attr.Name {
		case propertyType:
			info.TypeEncoding = attr.Value
			typ |= GetEncodingType(attr.Value)
			if typ.Category() == EncodingTypeObject {
				info.ClassName, info.Protocols = parseObjectType(attr.Value)
			}
		case propertyIVar:
			info.IvarName = attr.Value
		case propertyReadOnly:
			typ |= EncodingTypePropertyReadonly
		case propertyBycopy:
			typ |= EncodingTypePropertyCopy
		case propertyByref:
			typ |= EncodingTypePropertyRetain
		case propertyNonAtomic:
			typ |= EncodingTypePropertyNonatomic
		case propertyDynamic:
			typ |= EncodingTypePropertyDynamic
		case propertyWeak:
			typ |= EncodingTypePropertyWeak
		case propertyGetter:
			typ |= EncodingTypePropertyCustomGetter
			info.Getter = attr.Value
		case propertySetter:
			typ |= EncodingTypePropertyCustomSetter
			info.Setter = attr.Value
		}
	}
	info.Type = typ

	if name != "" {
		if info.Getter == "" {
			info.Getter = name
		}
		if info.Setter == "" {
			info.Setter = DefaultSetterName(name)
		}
	}
	return info
}

// DefaultSetterName returns the conventional setter selector for a property,
// "name" -> "setName:".
func DefaultSetterName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return "set" + name + ":"
	}
	return "set" + string(unicode.ToUpper(r)) + name[size:] + ":"
}

// SplitPropertyAttributes splits a property attribute string on its top level
// commas. Commas nested in aggregates, protocol lists or quotes do not split.
func SplitPropertyAttributes(attrs string) []PropertyAttribute {
	var out []PropertyAttribute
	level := 0
	quoted := false
	start := 0
	emit := func(end int) {
		if end > start {
			out = append(out, PropertyAttribute{Name: attrs[start], Value: attrs[start+1 : end]})
		}
		start = end + 1
	}
	for i := 0; i < len(attrs); i++ {
		switch c := attrs[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '{' || c == '(' || c == '[' || c == '<':
			level++
		case c == '}' || c == ')' || c == ']' || c == '>':
			if level > 0 {
				level--
			}
		case c == ',' && level == 0:
			emit(i)
		}
	}
	emit(len(attrs))
	return out
}

// parseObjectType extracts the class and protocol names from an object type
// encoding such as `@"NSObject<NSCopying><NSCoding>"`.
func parseObjectType(enc string) (string, []string) {
	if !strings.HasPrefix(enc, `@"`) {
		return "", nil
	}
	body := strings.TrimSuffix(enc[2:], `"`)

	name := body
	var protocols []string
	if idx := strings.IndexByte(body, '<'); idx >= 0 {
		name = body[:idx]
		for rest := body[idx:]; strings.HasPrefix(rest, "<"); {
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				break
			}
			if p := rest[1:end]; p != "" {
				protocols = append(protocols, p)
			}
			rest = rest[end+1:]
		}
	}
	return name, protocols
}

func (p *PropertyInfo) String() string {
	return fmt.Sprintf("@property (%s) %s %s;", p.Type, p.TypeEncoding, p.Name)
}
