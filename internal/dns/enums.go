package dns

// DNS header flags and masks (RFC 1035 Section 4.1.1).
//
// The DNS header contains a 16-bit flags field with the following layout:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z|AD|CD|   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
const (
	QRFlag     uint16 = 0x8000 // Query/Response: 1 = response, 0 = query
	OpcodeMask uint16 = 0x7800 // Bits 14-11: operation type (use >> 11 to extract)
	AAFlag     uint16 = 0x0400 // Authoritative Answer
	TCFlag     uint16 = 0x0200 // Truncation
	RDFlag     uint16 = 0x0100 // Recursion Desired
	RAFlag     uint16 = 0x0080 // Recursion Available
	ZFlag      uint16 = 0x0040 // Reserved
	ADFlag     uint16 = 0x0020 // Authenticated Data
	CDFlag     uint16 = 0x0010 // Checking Disabled
	RCodeMask  uint16 = 0x000F // Bits 3-0: response code
)

// QueryType is the 16-bit DNS type code, widened into a tagged Go type
// so that numeric codes with no named variant still round-trip.
type QueryType struct {
	Num uint16
}

// Named query type numeric codes (RFC 1035, RFC 3596).
const (
	TypeA     uint16 = 1
	TypeNS    uint16 = 2
	TypeCNAME uint16 = 5
	TypeMX    uint16 = 15
	TypeAAAA  uint16 = 28
)

// QTypeA, QTypeNS, ... are convenience constructors for the named query
// types; QTypeUnknown builds the UNKNOWN(n) variant for any other code.
func QTypeA() QueryType     { return QueryType{Num: TypeA} }
func QTypeNS() QueryType     { return QueryType{Num: TypeNS} }
func QTypeCNAME() QueryType  { return QueryType{Num: TypeCNAME} }
func QTypeMX() QueryType     { return QueryType{Num: TypeMX} }
func QTypeAAAA() QueryType   { return QueryType{Num: TypeAAAA} }
func QTypeUnknown(n uint16) QueryType { return QueryType{Num: n} }

// IsKnown reports whether Num matches one of the named variants.
func (q QueryType) IsKnown() bool {
	switch q.Num {
	case TypeA, TypeNS, TypeCNAME, TypeMX, TypeAAAA:
		return true
	default:
		return false
	}
}

func (q QueryType) String() string {
	switch q.Num {
	case TypeA:
		return "A"
	case TypeNS:
		return "NS"
	case TypeCNAME:
		return "CNAME"
	case TypeMX:
		return "MX"
	case TypeAAAA:
		return "AAAA"
	default:
		return "UNKNOWN"
	}
}

// RCode represents the 4-bit DNS response code (RFC 1035).
type RCode uint16

const (
	RCodeNoError  RCode = 0
	RCodeFormErr  RCode = 1
	RCodeServFail RCode = 2
	RCodeNXDomain RCode = 3
	RCodeNotImp   RCode = 4
	RCodeRefused  RCode = 5
)

// RCodeFromNum maps a raw 4-bit value to a RCode, defaulting unknown
// values to RCodeNoError per the wire contract.
func RCodeFromNum(n uint16) RCode {
	switch RCode(n) {
	case RCodeFormErr, RCodeServFail, RCodeNXDomain, RCodeNotImp, RCodeRefused:
		return RCode(n)
	default:
		return RCodeNoError
	}
}

// RCodeFromFlags extracts the response code from the packed header flags.
func RCodeFromFlags(flags uint16) RCode {
	return RCodeFromNum(flags & RCodeMask)
}
