package modbus

// ParameterType is the scalar decoding recipe a Tag's register span should
// be interpreted with.
type ParameterType int

const (
	ParamU8 ParameterType = iota
	ParamU16
	ParamU32
	ParamFloat
	ParamASCII
	ParamU8LSB
	ParamU8MSB
	ParamBool
	ParamByteArray
)

// ParameterRepresentation hints how a Tag's value should be presented to a
// human operator; it has no effect on wire decoding.
type ParameterRepresentation int

const (
	RepresentationNumerical ParameterRepresentation = iota
	RepresentationBoolean
	RepresentationBitset
	RepresentationString
	RepresentationStringPassword
	RepresentationTime
	RepresentationDropdown
	RepresentationSlider
	RepresentationLink
	RepresentationNumericalHex
)

// AccessLevel gates which operator role may edit a Tag's value.
type AccessLevel int

const (
	AccessDefault AccessLevel = 0
	AccessOperator1 AccessLevel = 1
	AccessOperator2 AccessLevel = 2
	AccessOperator3 AccessLevel = 3
	AccessSetup     AccessLevel = 10
	AccessAdmin     AccessLevel = 11
	AccessService   AccessLevel = 13
	AccessGod       AccessLevel = 15
)

// Tag is an immutable record binding an application-level name to a
// protocol address range and a scalar decoding recipe (§3).
type Tag struct {
	Name           string
	Info           string
	Unit           string
	RegisterType   RegisterType
	RegisterNumber uint16
	RegisterLength uint16
	ValueType      ParameterType
	Representation ParameterRepresentation
	AccessLevel    AccessLevel
	Min            float32
	Max            float32
	Options        string
	Precision      uint8
	IsEditable     bool
	DefaultValue   string
	Category       string

	// Key is the tag's unique identifier across a catalog.
	Key string
}
