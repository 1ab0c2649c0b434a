package graphstore

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/trigo/pkg/rdf"
	"github.com/aleksaelezovic/trigo/pkg/store"
	"github.com/zeebo/xxh3"
)

// termCodec implements trigo's store.TermEncoder and store.TermDecoder
// plugin interfaces. Terms encode to a type byte followed by 16 bytes of
// payload: a 128-bit xxh3 hash for named nodes, blank nodes and string
// literals (with the original string kept in the id2str side table), or an
// inline big-endian value for numeric, boolean and date/time literals.
//
// The store only consults id2str for named-node, blank-node and string
// term types, so every other literal kind must be fully recoverable from
// its inline payload.
type termCodec struct{}

func newTermCodec() *termCodec { return &termCodec{} }

const encodedTermSize = 17

func hash128(s string) [16]byte {
	h := xxh3.Hash128([]byte(s))
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], h.Hi)
	binary.BigEndian.PutUint64(out[8:16], h.Lo)
	return out
}

func hashedTerm(tt rdf.TermType, s string) (store.EncodedTerm, *string) {
	var encoded store.EncodedTerm
	encoded[0] = byte(tt)
	h := hash128(s)
	copy(encoded[1:], h[:])
	str := s
	return encoded, &str
}

func inlineTerm(tt rdf.TermType, payload uint64) store.EncodedTerm {
	var encoded store.EncodedTerm
	encoded[0] = byte(tt)
	binary.BigEndian.PutUint64(encoded[1:9], payload)
	return encoded
}

// EncodeTerm encodes an RDF term. The returned string, when non-nil, must
// be stored in the id2str table under the encoded key.
func (c *termCodec) EncodeTerm(term rdf.Term) (store.EncodedTerm, *string, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		encoded, s := hashedTerm(rdf.TermTypeNamedNode, t.IRI)
		return encoded, s, nil

	case *rdf.BlankNode:
		encoded, s := hashedTerm(rdf.TermTypeBlankNode, t.ID)
		return encoded, s, nil

	case *rdf.Literal:
		return c.encodeLiteral(t)

	case *rdf.DefaultGraph:
		var encoded store.EncodedTerm
		encoded[0] = byte(rdf.TermTypeDefaultGraph)
		return encoded, nil, nil

	default:
		var encoded store.EncodedTerm
		return encoded, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

func (c *termCodec) encodeLiteral(lit *rdf.Literal) (store.EncodedTerm, *string, error) {
	var encoded store.EncodedTerm

	if lit.Datatype != nil {
		switch lit.Datatype.IRI {
		case rdf.XSDInteger.IRI:
			value, err := strconv.ParseInt(lit.Value, 10, 64)
			if err != nil {
				return encoded, nil, fmt.Errorf("invalid integer literal: %w", err)
			}
			return inlineTerm(rdf.TermTypeIntegerLiteral, uint64(value)), nil, nil

		case rdf.XSDDecimal.IRI, rdf.XSDDouble.IRI:
			value, err := strconv.ParseFloat(lit.Value, 64)
			if err != nil {
				return encoded, nil, fmt.Errorf("invalid numeric literal: %w", err)
			}
			tt := rdf.TermTypeDoubleLiteral
			if lit.Datatype.IRI == rdf.XSDDecimal.IRI {
				tt = rdf.TermTypeDecimalLiteral
			}
			return inlineTerm(tt, math.Float64bits(value)), nil, nil

		case rdf.XSDBoolean.IRI:
			value, err := strconv.ParseBool(lit.Value)
			if err != nil {
				return encoded, nil, fmt.Errorf("invalid boolean literal: %w", err)
			}
			var payload uint64
			if value {
				payload = 1 << 56 // first payload byte
			}
			return inlineTerm(rdf.TermTypeBooleanLiteral, payload), nil, nil

		case rdf.XSDDateTime.IRI:
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(lit.Value))
			if err != nil {
				return encoded, nil, fmt.Errorf("invalid dateTime literal: %w", err)
			}
			return inlineTerm(rdf.TermTypeDateTimeLiteral, uint64(t.UnixNano())), nil, nil

		case rdf.XSDDate.IRI:
			t, err := time.Parse("2006-01-02", strings.TrimSpace(lit.Value))
			if err != nil {
				return encoded, nil, fmt.Errorf("invalid date literal: %w", err)
			}
			return inlineTerm(rdf.TermTypeDateLiteral, uint64(t.Unix()/86400)), nil, nil
		}
	}

	if lit.Language != "" {
		encoded, s := hashedTerm(rdf.TermTypeLangStringLiteral, lit.Value+"@"+lit.Language)
		return encoded, s, nil
	}

	// Plain strings and literals with unrecognized datatypes are stored by
	// lexical form. Unlike trigo's built-in codec, short strings are never
	// inlined: hashing everything keeps decode to a single id2str path.
	encoded2, s := hashedTerm(rdf.TermTypeStringLiteral, lit.Value)
	return encoded2, s, nil
}

// EncodeQuadKey concatenates encoded terms into a big-endian index key.
func (c *termCodec) EncodeQuadKey(terms ...store.EncodedTerm) []byte {
	out := make([]byte, 0, len(terms)*encodedTermSize)
	for _, term := range terms {
		out = append(out, term[:]...)
	}
	return out
}

// DecodeTerm reconstructs a term from its encoded form and, for hashed
// types, the string looked up from id2str.
func (c *termCodec) DecodeTerm(encoded store.EncodedTerm, stringValue *string) (rdf.Term, error) {
	tt := rdf.TermType(encoded[0])
	switch tt {
	case rdf.TermTypeNamedNode:
		if stringValue == nil {
			return nil, fmt.Errorf("named node requires id2str entry")
		}
		return rdf.NewNamedNode(*stringValue), nil

	case rdf.TermTypeBlankNode:
		if stringValue == nil {
			return nil, fmt.Errorf("blank node requires id2str entry")
		}
		return rdf.NewBlankNode(*stringValue), nil

	case rdf.TermTypeStringLiteral:
		if stringValue == nil {
			return nil, fmt.Errorf("string literal requires id2str entry")
		}
		return rdf.NewLiteral(*stringValue), nil

	case rdf.TermTypeLangStringLiteral:
		if stringValue == nil {
			return nil, fmt.Errorf("language-tagged literal requires id2str entry")
		}
		if at := strings.LastIndexByte(*stringValue, '@'); at >= 0 {
			return rdf.NewLiteralWithLanguage((*stringValue)[:at], (*stringValue)[at+1:]), nil
		}
		return rdf.NewLiteral(*stringValue), nil

	case rdf.TermTypeIntegerLiteral:
		return rdf.NewIntegerLiteral(int64(binary.BigEndian.Uint64(encoded[1:9]))), nil

	case rdf.TermTypeDecimalLiteral:
		value := math.Float64frombits(binary.BigEndian.Uint64(encoded[1:9]))
		return rdf.NewLiteralWithDatatype(strconv.FormatFloat(value, 'g', -1, 64), rdf.XSDDecimal), nil

	case rdf.TermTypeDoubleLiteral:
		return rdf.NewDoubleLiteral(math.Float64frombits(binary.BigEndian.Uint64(encoded[1:9]))), nil

	case rdf.TermTypeBooleanLiteral:
		return rdf.NewBooleanLiteral(encoded[1] != 0), nil

	case rdf.TermTypeDateTimeLiteral:
		nanos := int64(binary.BigEndian.Uint64(encoded[1:9]))
		return rdf.NewDateTimeLiteral(time.Unix(0, nanos).UTC()), nil

	case rdf.TermTypeDateLiteral:
		days := int64(binary.BigEndian.Uint64(encoded[1:9]))
		return rdf.NewLiteralWithDatatype(time.Unix(days*86400, 0).UTC().Format("2006-01-02"), rdf.XSDDate), nil

	case rdf.TermTypeDefaultGraph:
		return rdf.NewDefaultGraph(), nil

	default:
		return nil, fmt.Errorf("unknown encoded term type: %d", tt)
	}
}
