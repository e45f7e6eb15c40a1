package destring

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// payloadPattern matches the base64 data URI carrying the compiled decode
// routine. The surrounding scaffold is not part of the contract and may vary
// freely between vendor versions, so this is a substring scan, not a parse.
var payloadPattern = regexp.MustCompile(`data:application/octet-stream;base64,([A-Za-z0-9+/=]+)`)

// ExtractBinary locates the embedded binary payload in the artifact text and
// returns its decoded bytes. Returns ErrPayloadNotFound when no marker exists.
func ExtractBinary(artifactText string) ([]byte, error) {
	match := payloadPattern.FindStringSubmatch(artifactText)
	if match == nil {
		return nil, ErrPayloadNotFound
	}
	binary, err := base64.StdEncoding.DecodeString(match[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload is not valid base64: %v", ErrPayloadNotFound, err)
	}
	if len(binary) == 0 {
		return nil, fmt.Errorf("%w: payload is empty", ErrPayloadNotFound)
	}
	return binary, nil
}
