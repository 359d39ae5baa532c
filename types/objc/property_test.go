package objc

import (
	"reflect"
	"testing"
)

func TestParseProperty(t *testing.T) {
	tests := []struct {
		name      string
		propName  string
		attrs     string
		wantType  EncodingType
		wantEnc   string
		wantIvar  string
		wantClass string
		wantProto []string
		wantGet   string
		wantSet   string
	}{
		{
			name:      "Test strong nonatomic object",
			propName:  "user",
			attrs:     `T@"User",&,N,V_user`,
			wantType:  EncodingTypeObject | EncodingTypePropertyRetain | EncodingTypePropertyNonatomic,
			wantEnc:   `@"User"`,
			wantIvar:  "_user",
			wantClass: "User",
			wantGet:   "user",
			wantSet:   "setUser:",
		},
		{
			name:     "Test readonly custom getter",
			propName: "enabled",
			attrs:    "Tc,R,GisEnabled",
			wantType: EncodingTypeInt8 | EncodingTypePropertyReadonly | EncodingTypePropertyCustomGetter,
			wantEnc:  "c",
			wantGet:  "isEnabled",
			wantSet:  "setEnabled:",
		},
		{
			name:     "Test custom setter",
			propName: "count",
			attrs:    "Tq,N,SupdateCount:,V_count",
			wantType: EncodingTypeInt64 | EncodingTypePropertyNonatomic | EncodingTypePropertyCustomSetter,
			wantEnc:  "q",
			wantIvar: "_count",
			wantGet:  "count",
			wantSet:  "updateCount:",
		},
		{
			name:      "Test copy with protocols",
			propName:  "value",
			attrs:     `T@"NSObject<NSCopying><NSCoding>",C,N,V_value`,
			wantType:  EncodingTypeObject | EncodingTypePropertyCopy | EncodingTypePropertyNonatomic,
			wantEnc:   `@"NSObject<NSCopying><NSCoding>"`,
			wantIvar:  "_value",
			wantClass: "NSObject",
			wantProto: []string{"NSCopying", "NSCoding"},
			wantGet:   "value",
			wantSet:   "setValue:",
		},
		{
			name:      "Test weak id with protocol",
			propName:  "delegate",
			attrs:     `T@"<Delegate>",W,N,V_delegate`,
			wantType:  EncodingTypeObject | EncodingTypePropertyWeak | EncodingTypePropertyNonatomic,
			wantEnc:   `@"<Delegate>"`,
			wantIvar:  "_delegate",
			wantProto: []string{"Delegate"},
			wantGet:   "delegate",
			wantSet:   "setDelegate:",
		},
		{
			name:     "Test block",
			propName: "handler",
			attrs:    "T@?,C,N,V_handler",
			wantType: EncodingTypeBlock | EncodingTypePropertyCopy | EncodingTypePropertyNonatomic,
			wantEnc:  "@?",
			wantIvar: "_handler",
			wantGet:  "handler",
			wantSet:  "setHandler:",
		},
		{
			name:     "Test struct",
			propName: "frame",
			attrs:    "T{CGRect={CGPoint=dd}{CGSize=dd}},N,V_frame",
			wantType: EncodingTypeStruct | EncodingTypePropertyNonatomic,
			wantEnc:  "{CGRect={CGPoint=dd}{CGSize=dd}}",
			wantIvar: "_frame",
			wantGet:  "frame",
			wantSet:  "setFrame:",
		},
		{
			name:     "Test dynamic",
			propName: "title",
			attrs:    "Ti,D",
			wantType: EncodingTypeInt32 | EncodingTypePropertyDynamic,
			wantEnc:  "i",
			wantGet:  "title",
			wantSet:  "setTitle:",
		},
		{
			name:     "Test empty attributes",
			propName: "x",
			attrs:    "",
			wantType: EncodingTypeUnknown,
			wantGet:  "x",
			wantSet:  "setX:",
		},
		{
			name:     "Test unknown attribute ignored",
			propName: "y",
			attrs:    "Tf,P,N",
			wantType: EncodingTypeFloat | EncodingTypePropertyNonatomic,
			wantEnc:  "f",
			wantGet:  "y",
			wantSet:  "setY:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseProperty(tt.propName, tt.attrs)
			if got.Name != tt.propName {
				t.Errorf("Name = %q, want %q", got.Name, tt.propName)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.TypeEncoding != tt.wantEnc {
				t.Errorf("TypeEncoding = %q, want %q", got.TypeEncoding, tt.wantEnc)
			}
			if got.IvarName != tt.wantIvar {
				t.Errorf("IvarName = %q, want %q", got.IvarName, tt.wantIvar)
			}
			if got.ClassName != tt.wantClass {
				t.Errorf("ClassName = %q, want %q", got.ClassName, tt.wantClass)
			}
			if !reflect.DeepEqual(got.Protocols, tt.wantProto) {
				t.Errorf("Protocols = %q, want %q", got.Protocols, tt.wantProto)
			}
			if got.Getter != tt.wantGet {
				t.Errorf("Getter = %q, want %q", got.Getter, tt.wantGet)
			}
			if got.Setter != tt.wantSet {
				t.Errorf("Setter = %q, want %q", got.Setter, tt.wantSet)
			}
		})
	}
}

func TestParsePropertyNotReadonly(t *testing.T) {
	p := ParseProperty("user", `T@"User",&,N,V_user`)
	if p.Type.Has(EncodingTypePropertyReadonly) {
		t.Error("property should not be readonly")
	}
	if p.Type.Has(EncodingTypePropertyCopy) || p.Type.Has(EncodingTypePropertyWeak) {
		t.Error("unexpected memory management flag")
	}
	if p.Type.Qualifiers() != 0 {
		t.Errorf("unexpected qualifiers %v", p.Type.Qualifiers())
	}
}

func TestDefaultSetterName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "user", want: "setUser:"},
		{name: "URL", want: "setURL:"},
		{name: "_private", want: "set_private:"},
		{name: "éclair", want: "setÉclair:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultSetterName(tt.name); got != tt.want {
				t.Errorf("DefaultSetterName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitPropertyAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
		want  []PropertyAttribute
	}{
		{
			name:  "Test simple",
			attrs: "Ti,N,V_i",
			want:  []PropertyAttribute{{'T', "i"}, {'N', ""}, {'V', "_i"}},
		},
		{
			name:  "Test comma in quotes",
			attrs: `T@"A,B",N`,
			want:  []PropertyAttribute{{'T', `@"A,B"`}, {'N', ""}},
		},
		{
			name:  "Test comma in struct",
			attrs: "T{Pair=i,i},R",
			want:  []PropertyAttribute{{'T', "{Pair=i,i}"}, {'R', ""}},
		},
		{
			name:  "Test empty segments",
			attrs: ",,N,",
			want:  []PropertyAttribute{{'N', ""}},
		},
		{
			name:  "Test empty",
			attrs: "",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitPropertyAttributes(tt.attrs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitPropertyAttributes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPropertyInfoString(t *testing.T) {
	p := ParseProperty("user", `T@"User",&,N,V_user`)
	want := `@property (object|retain|nonatomic) @"User" user;`
	if got := p.String(); got != want {
		t.Errorf("String() = %v, want %v", got, want)
	}
}
