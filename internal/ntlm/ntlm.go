// Package ntlm implements the LM/NTLM/NTLMv2 challenge-response
// primitives SessionSetupAndX authenticates with: bit-exact hash
// construction, DES key expansion, HMAC-MD5 response computation, and
// NTLMv2 target-info blob parsing. Nothing here talks to the wire format
// directly — internal/handlers owns extracting the response bytes out of
// a SessionSetupAndX request and calling into this package.
package ntlm

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/md4"

	"github.com/macos-fuse-t/go-smb1/internal/binutil"
)

// magicConstant is the fixed plaintext ("KGS!@#$%") the LM hash
// algorithm encrypts under each derived DES key.
var magicConstant = []byte("KGS!@#$%")

// LMHash computes the 16-byte LAN Manager hash of an ASCII password.
func LMHash(password string) []byte {
	upper := strings.ToUpper(password)
	var padded [14]byte
	copy(padded[:], upper)

	out := make([]byte, 16)
	copy(out[0:8], desEncryptECB(expandDESKey(padded[0:7]), magicConstant))
	copy(out[8:16], desEncryptECB(expandDESKey(padded[7:14]), magicConstant))
	return out
}

// NTHash computes the 16-byte NTLM hash: MD4 of the UTF-16LE password.
func NTHash(password string) []byte {
	h := md4.New()
	h.Write(binutil.EncodeUTF16LE(password))
	return h.Sum(nil)
}

// NTLMv2Hash computes HMAC-MD5(NTHash(password), UPPER(user)+domain),
// both operands UTF-16LE, per MS-NLMP.
func NTLMv2Hash(ntHash []byte, user, domain string) []byte {
	mac := hmac.New(md5.New, ntHash)
	mac.Write(binutil.EncodeUTF16LE(strings.ToUpper(user) + domain))
	return mac.Sum(nil)
}

// LMResponse computes the classic 24-byte LM challenge response.
func LMResponse(lmHash, serverChallenge []byte) []byte {
	return desLongResponse(lmHash, serverChallenge)
}

// NTResponse computes the classic 24-byte NTLM challenge response.
func NTResponse(ntHash, serverChallenge []byte) []byte {
	return desLongResponse(ntHash, serverChallenge)
}

// LMv2Response computes hmac(16) || clientChallenge(8), 24 bytes total.
func LMv2Response(ntlmv2Hash, serverChallenge, clientChallenge []byte) []byte {
	mac := hmac.New(md5.New, ntlmv2Hash)
	mac.Write(serverChallenge)
	mac.Write(clientChallenge)
	sum := mac.Sum(nil)
	return append(sum, clientChallenge...)
}

// NTLMv2Response computes hmac(16) || blob, where blob is the caller's
// pre-built NTLMv2 blob (BuildBlob or a client-supplied one).
func NTLMv2Response(ntlmv2Hash, serverChallenge, blob []byte) []byte {
	mac := hmac.New(md5.New, ntlmv2Hash)
	mac.Write(serverChallenge)
	mac.Write(blob)
	sum := mac.Sum(nil)
	out := make([]byte, 0, len(sum)+len(blob))
	out = append(out, sum...)
	out = append(out, blob...)
	return out
}

// GenerateServerChallenge returns 8 cryptographically random bytes. Must
// never repeat across connections.
func GenerateServerChallenge() ([8]byte, error) {
	var c [8]byte
	_, err := rand.Read(c[:])
	return c, err
}

// ValidateLMResponse recomputes the expected LM response from lmHash and
// serverChallenge and compares it to response in constant time.
func ValidateLMResponse(lmHash, serverChallenge, response []byte) bool {
	if len(response) != 24 {
		return false
	}
	expected := LMResponse(lmHash, serverChallenge)
	return subtle.ConstantTimeCompare(expected, response) == 1
}

// ValidateNTResponse recomputes the expected NTLM response from ntHash
// and serverChallenge and compares it to response in constant time.
func ValidateNTResponse(ntHash, serverChallenge, response []byte) bool {
	if len(response) != 24 {
		return false
	}
	expected := NTResponse(ntHash, serverChallenge)
	return subtle.ConstantTimeCompare(expected, response) == 1
}

// ValidateLMv2Response recomputes the expected LMv2 response and
// compares it to response in constant time.
func ValidateLMv2Response(ntlmv2Hash, serverChallenge, response []byte) bool {
	if len(response) != 24 {
		return false
	}
	clientChallenge := response[16:24]
	expected := LMv2Response(ntlmv2Hash, serverChallenge, clientChallenge)
	return subtle.ConstantTimeCompare(expected, response) == 1
}

// ValidateNTLMv2Response recomputes the expected NTLMv2 response from
// the blob embedded in response and compares it in constant time.
// Responses shorter than 16+36 bytes (the minimum blob size) are
// rejected without hashing.
func ValidateNTLMv2Response(ntlmv2Hash, serverChallenge, response []byte) bool {
	const minLen = 16 + 36
	if len(response) < minLen {
		return false
	}
	blob := response[16:]
	expected := NTLMv2Response(ntlmv2Hash, serverChallenge, blob)
	if len(expected) != len(response) {
		return false
	}
	return subtle.ConstantTimeCompare(expected, response) == 1
}

// TargetInfoPair is one (type, value) entry of an NTLMv2 target-info
// blob, terminated by a type==0 length==0 pair.
type TargetInfoPair struct {
	Type  uint16
	Value []byte
}

// Well-known target-info AVPair types (MS-NLMP 2.2.2.1).
const (
	MsvAvEOL             uint16 = 0x0000
	MsvAvNbComputerName  uint16 = 0x0001
	MsvAvNbDomainName    uint16 = 0x0002
	MsvAvDnsComputerName uint16 = 0x0003
	MsvAvDnsDomainName   uint16 = 0x0004
	MsvAvDnsTreeName     uint16 = 0x0005
	MsvAvFlags           uint16 = 0x0006
	MsvAvTimestamp       uint16 = 0x0007
	MsvAvSingleHost      uint16 = 0x0008
	MsvAvTargetName      uint16 = 0x0009
	MsvAvChannelBindings uint16 = 0x000A
)

// Blob is a parsed NTLMv2 client blob.
type Blob struct {
	Timestamp     uint64
	ClientNonce   [8]byte
	TargetInfo    []TargetInfoPair
	Raw           []byte
	targetInfoRaw []byte
}

const blobSignature uint32 = 0x00010000

// ParseNTLMv2Blob parses the blob embedded at the tail of an NTLMv2
// response (response[16:]).
func ParseNTLMv2Blob(raw []byte) (*Blob, error) {
	if len(raw) < 28 {
		return nil, errShortBlob
	}
	if binary.LittleEndian.Uint32(raw[0:4]) != blobSignature {
		return nil, errBadSignature
	}
	// raw[4:8] reserved, must be zero; not enforced against malformed
	// clients since it carries no security meaning.
	b := &Blob{Raw: raw}
	b.Timestamp = binary.LittleEndian.Uint64(raw[8:16])
	copy(b.ClientNonce[:], raw[16:24])
	// raw[24:28] unknown/reserved.

	off := 28
	pairs, targetInfoRaw, err := parseTargetInfo(raw, off)
	if err != nil {
		return nil, err
	}
	b.TargetInfo = pairs
	b.targetInfoRaw = targetInfoRaw
	return b, nil
}

func parseTargetInfo(raw []byte, off int) ([]TargetInfoPair, []byte, error) {
	start := off
	var pairs []TargetInfoPair
	for {
		if off+4 > len(raw) {
			return nil, nil, errShortBlob
		}
		typ := binary.LittleEndian.Uint16(raw[off:])
		ln := binary.LittleEndian.Uint16(raw[off+2:])
		off += 4
		if typ == MsvAvEOL && ln == 0 {
			return pairs, raw[start:off], nil
		}
		if off+int(ln) > len(raw) {
			return nil, nil, errShortBlob
		}
		pairs = append(pairs, TargetInfoPair{Type: typ, Value: raw[off : off+int(ln)]})
		off += int(ln)
	}
}

// BuildBlob serialises timestamp/clientNonce/targetInfo into the wire
// format ParseNTLMv2Blob understands; this package's tests use it to
// build NTLMv2 responses.
func BuildBlob(timestamp uint64, clientNonce [8]byte, targetInfo []TargetInfoPair) []byte {
	size := 28
	for _, p := range targetInfo {
		size += 4 + len(p.Value)
	}
	size += 4 // terminator
	size += 4 // trailing unknown2

	buf := make([]byte, size)
	binary.LittleEndian.PutUint32(buf[0:4], blobSignature)
	binary.LittleEndian.PutUint64(buf[8:16], timestamp)
	copy(buf[16:24], clientNonce[:])

	off := 28
	for _, p := range targetInfo {
		binary.LittleEndian.PutUint16(buf[off:], p.Type)
		binary.LittleEndian.PutUint16(buf[off+2:], uint16(len(p.Value)))
		off += 4
		copy(buf[off:], p.Value)
		off += len(p.Value)
	}
	// terminator type=0 len=0 already zero; skip 4 bytes, trailing
	// unknown2 already zero.
	return buf
}
