package types

import "encoding/binary"

const CodeMetadataLength = 2

// CodeMetadata holds the contract flags, serialized as 2 big endian bytes
type CodeMetadata uint16

const (
	MetadataPayable      CodeMetadata = 0x0002
	MetadataPayableBySC  CodeMetadata = 0x0004
	MetadataUpgradeable  CodeMetadata = 0x0100
	MetadataReadable     CodeMetadata = 0x0400
	codeMetadataAllFlags              = MetadataPayable | MetadataPayableBySC | MetadataUpgradeable | MetadataReadable
)

// CodeMetadataFromBytes decodes the 2 byte form. Shorter inputs are left padded, unknown bits dropped.
func CodeMetadataFromBytes(b []byte) CodeMetadata {
	buf := make([]byte, CodeMetadataLength)
	if len(b) > CodeMetadataLength {
		b = b[len(b)-CodeMetadataLength:]
	}

	copy(buf[CodeMetadataLength-len(b):], b)

	return CodeMetadata(binary.BigEndian.Uint16(buf)) & codeMetadataAllFlags
}

func (m CodeMetadata) Bytes() []byte {
	buf := make([]byte, CodeMetadataLength)
	binary.BigEndian.PutUint16(buf, uint16(m))

	return buf
}

func (m CodeMetadata) Upgradeable() bool { return m&MetadataUpgradeable != 0 }
func (m CodeMetadata) Readable() bool    { return m&MetadataReadable != 0 }
func (m CodeMetadata) Payable() bool     { return m&MetadataPayable != 0 }
func (m CodeMetadata) PayableBySC() bool { return m&MetadataPayableBySC != 0 }
