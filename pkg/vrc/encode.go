package vrc

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/ib-77/vrcdecode/pkg/ucl"
)

// EncodePayload builds scanner text that decodes back to fields: UTF-16LE
// text, stored in an NRV2E stream, behind a frame holding the uncompressed
// byte length (little endian), in base64.
func EncodePayload(fields FieldList) (string, error) {
	raw, err := EncodeText(JoinFields(fields))
	if err != nil {
		return "", err
	}

	body := ucl.Store(raw)
	out := make([]byte, FrameSize, FrameSize+len(body))
	binary.LittleEndian.PutUint32(out, uint32(len(raw)))
	out = append(out, body...)
	return base64.StdEncoding.EncodeToString(out), nil
}
