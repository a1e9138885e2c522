package tileindex

import (
	"errors"
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/protoscan"
)

// wire format field numbers of the vector tile message
const (
	tileLayersField = 3
	layerNameField  = 1
)

// protobuf wire types
const (
	wireTypeVarint          = 0
	wireTypeFixed64         = 1
	wireTypeLengthDelimited = 2
	wireTypeFixed32         = 5
)

var ErrMalformedPayload = errors.New("malformed tile payload")

// ChunkView is one encoded layer record inside a tile payload.
// It does not own its bytes; it is valid for as long as the payload it was built from.
type ChunkView struct {
	Name   string
	Offset int
	data   []byte
}

// Bytes returns the encoded layer message, without its field key and length prefix
func (c ChunkView) Bytes() []byte {
	return c.data
}

func (c ChunkView) Len() int {
	return len(c.data)
}

// LayerIndex maps layer names to their records, in the order they appear in the payload.
type LayerIndex map[string][]ChunkView

func (li LayerIndex) Chunks(name string) []ChunkView {
	return li[name]
}

func (li LayerIndex) Names() []string {
	var names []string
	for name := range li {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build indexes an encoded vector tile by layer name in a single pass over the top-level fields.
// Only the name of each layer is read; features are left encoded.
// Records without a name are dropped.
func Build(payload []byte) (LayerIndex, errorsx.Error) {
	index := make(LayerIndex)

	pos := 0
	for recordIdx := 0; pos < len(payload); recordIdx++ {
		key, n := proto.DecodeVarint(payload[pos:])
		if n == 0 {
			return nil, malformed("bad field key", "record", recordIdx, "offset", pos)
		}
		pos += n

		fieldNumber, wireType := key>>3, key&7
		if fieldNumber == 0 {
			return nil, malformed("field number 0", "record", recordIdx, "offset", pos)
		}

		if fieldNumber != tileLayersField || wireType != wireTypeLengthDelimited {
			n, err := fieldLen(payload[pos:], wireType)
			if err != nil {
				return nil, malformed(err.Error(), "record", recordIdx, "offset", pos, "field", fieldNumber)
			}
			pos += n
			continue
		}

		recordLen, n := proto.DecodeVarint(payload[pos:])
		if n == 0 {
			return nil, malformed("bad length prefix", "record", recordIdx, "offset", pos)
		}
		pos += n

		if recordLen > uint64(len(payload)-pos) {
			return nil, malformed("record runs past end of payload", "record", recordIdx, "offset", pos, "length", recordLen)
		}

		record := payload[pos : pos+int(recordLen)]

		name, err := scanLayerName(record)
		if err != nil {
			return nil, malformed(err.Error(), "record", recordIdx, "offset", pos)
		}

		if name != "" {
			index[name] = append(index[name], ChunkView{
				Name:   name,
				Offset: pos,
				data:   record,
			})
		}

		pos += int(recordLen)
	}

	return index, nil
}

func scanLayerName(record []byte) (string, error) {
	msg := protoscan.New(record)
	for msg.Next() {
		if msg.FieldNumber() == layerNameField && msg.WireType() == wireTypeLengthDelimited {
			return msg.String()
		}
		msg.Skip()
	}

	if msg.Err() != nil {
		return "", msg.Err()
	}

	return "", nil
}

// fieldLen returns the encoded length of a field value with the given wire type
func fieldLen(data []byte, wireType uint64) (int, error) {
	switch wireType {
	case wireTypeVarint:
		_, n := proto.DecodeVarint(data)
		if n == 0 {
			return 0, errorsx.Errorf("bad varint")
		}
		return n, nil
	case wireTypeFixed64:
		return fixedLen(data, 8)
	case wireTypeLengthDelimited:
		l, n := proto.DecodeVarint(data)
		if n == 0 || l > uint64(len(data)-n) {
			return 0, errorsx.Errorf("bad length-delimited field")
		}
		return n + int(l), nil
	case wireTypeFixed32:
		return fixedLen(data, 4)
	default:
		return 0, errorsx.Errorf("unsupported wire type %d", wireType)
	}
}

func fixedLen(data []byte, size int) (int, error) {
	if len(data) < size {
		return 0, errorsx.Errorf("truncated fixed%d field", size*8)
	}
	return size, nil
}

func malformed(reason string, kvPairs ...interface{}) errorsx.Error {
	return errorsx.Wrap(ErrMalformedPayload, append(kvPairs, "reason", reason)...)
}
