package objc

import "fmt"

// IvarInfo describes one instance variable.
type IvarInfo struct {
	Ivar         Ivar
	Name         string
	Offset       int64 // byte offset from the instance base address
	TypeEncoding string
	Type         EncodingType
}

// NewIvarInfo reads ivar from rt.
func NewIvarInfo(rt Runtime, ivar Ivar) *IvarInfo {
	enc := rt.IvarTypeEncoding(ivar)
	return &IvarInfo{
		Ivar:         ivar,
		Name:         rt.IvarName(ivar),
		Offset:       rt.IvarOffset(ivar),
		TypeEncoding: enc,
		Type:         GetEncodingType(enc),
	}
}

func (i *IvarInfo) String() string {
	return fmt.Sprintf("%s %s; // %#x", i.TypeEncoding, i.Name, i.Offset)
}
