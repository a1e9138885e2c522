package vtdal

import (
	"bytes"
	"io"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Decompress unzips gzipped tile payloads. Payloads that are not gzipped are returned as they are.
func Decompress(data []byte) ([]byte, errorsx.Error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return decompressed, nil
}

// Compress gzips a tile payload, the way tile stores usually hold them
func Compress(data []byte) ([]byte, errorsx.Error) {
	var buffer bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buffer, gzip.BestCompression)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	_, err = writer.Write(data)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	err = writer.Close()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return buffer.Bytes(), nil
}
