package objc

import "fmt"

// MethodInfo describes one method.
//
// ArgumentTypeEncodings includes the two implicit arguments: index 0 is the
// receiver (self) and index 1 the selector (_cmd).
type MethodInfo struct {
	Method                Method
	Name                  string
	Sel                   SEL
	Imp                   IMP
	TypeEncoding          string
	ReturnTypeEncoding    string
	ArgumentTypeEncodings []string
}

// NewMethodInfo reads m from rt.
func NewMethodInfo(rt Runtime, m Method) *MethodInfo {
	sel := rt.MethodSelector(m)
	types := rt.MethodTypeEncoding(m)
	ret, args := SplitMethodTypes(types)
	return &MethodInfo{
		Method:                m,
		Name:                  rt.SelectorName(sel),
		Sel:                   sel,
		Imp:                   rt.MethodImplementation(m),
		TypeEncoding:          types,
		ReturnTypeEncoding:    ret,
		ArgumentTypeEncodings: args,
	}
}

// NumberOfArguments returns the number of method arguments, implicit ones included.
func (m *MethodInfo) NumberOfArguments() int {
	if m == nil {
		return 0
	}
	return len(m.ArgumentTypeEncodings)
}

// ReturnType classifies the return type.
func (m *MethodInfo) ReturnType() EncodingType {
	return GetEncodingType(m.ReturnTypeEncoding)
}

// ArgumentType classifies argument index, returning EncodingTypeUnknown when
// index is out of range.
func (m *MethodInfo) ArgumentType(index int) EncodingType {
	if index < 0 || index >= len(m.ArgumentTypeEncodings) {
		return EncodingTypeUnknown
	}
	return GetEncodingType(m.ArgumentTypeEncodings[index])
}

// Parameters returns the explicit argument encodings, skipping self and _cmd.
func (m *MethodInfo) Parameters() []string {
	if len(m.ArgumentTypeEncodings) <= 2 {
		return nil
	}
	return m.ArgumentTypeEncodings[2:]
}

func (m *MethodInfo) String() string {
	return fmt.Sprintf("%s %s; // %#x", m.TypeEncoding, m.Name, m.Imp)
}
