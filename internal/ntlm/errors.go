package ntlm

import "errors"

var (
	errShortBlob    = errors.New("ntlm: truncated NTLMv2 blob")
	errBadSignature = errors.New("ntlm: bad NTLMv2 blob signature")
)
