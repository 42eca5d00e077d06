package ntlm

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestLMHashKnownVector(t *testing.T) {
	got := LMHash("Password")
	want := hexBytes(t, "E52CAC67419A9A224A3B108F3FA6CB6D")
	if !bytes.Equal(got, want) {
		t.Fatalf("LMHash(Password) = %X, want %X", got, want)
	}
}

func TestNTHashKnownVector(t *testing.T) {
	got := NTHash("Password")
	want := hexBytes(t, "8846F7EAEE8FB117AD06BDD830B7586C")
	if !bytes.Equal(got, want) {
		t.Fatalf("NTHash(Password) = %X, want %X", got, want)
	}
}

func TestResponseLengths(t *testing.T) {
	hash := NTHash("Password")
	challenge := hexBytes(t, "0123456789ABCDEF")

	if got := len(LMResponse(hash, challenge)); got != 24 {
		t.Errorf("LMResponse length = %d, want 24", got)
	}
	if got := len(NTResponse(hash, challenge)); got != 24 {
		t.Errorf("NTResponse length = %d, want 24", got)
	}

	v2Hash := NTLMv2Hash(hash, "User", "DOMAIN")
	clientChallenge := hexBytes(t, "FFFFFF0011223344")
	lmv2 := LMv2Response(v2Hash, challenge, clientChallenge)
	if len(lmv2) != 24 {
		t.Errorf("LMv2Response length = %d, want 24", len(lmv2))
	}
	if !bytes.Equal(lmv2[16:], clientChallenge) {
		t.Errorf("LMv2Response tail != clientChallenge")
	}
}

func TestNTLMv2RoundTrip(t *testing.T) {
	ntHash := NTHash("Password")
	v2Hash := NTLMv2Hash(ntHash, "User", "Domain")

	serverChallenge := hexBytes(t, "0123456789ABCDEF")
	var clientNonce [8]byte
	copy(clientNonce[:], hexBytes(t, "FFFFFF0011223344"))

	targetInfo := []TargetInfoPair{
		{Type: MsvAvNbDomainName, Value: []byte{'D', 0, 'O', 0}},
		{Type: MsvAvEOL},
	}
	blob := BuildBlob(0x01D6E1FE2A5B9700, clientNonce, targetInfo[:len(targetInfo)-1])

	resp := NTLMv2Response(v2Hash, serverChallenge, blob)
	if len(resp) < 16+36 {
		t.Fatalf("response too short: %d", len(resp))
	}

	if !ValidateNTLMv2Response(v2Hash, serverChallenge, resp) {
		t.Fatalf("expected valid response")
	}

	flipped := append([]byte(nil), resp...)
	flipped[0] ^= 0x01
	if ValidateNTLMv2Response(v2Hash, serverChallenge, flipped) {
		t.Fatalf("expected bit-flipped response to be rejected")
	}
}

func TestParseNTLMv2Blob(t *testing.T) {
	var nonce [8]byte
	copy(nonce[:], hexBytes(t, "FFFFFF0011223344"))
	targetInfo := []TargetInfoPair{
		{Type: MsvAvNbComputerName, Value: []byte{'S', 0, 'R', 0, 'V', 0}},
	}
	raw := BuildBlob(12345, nonce, targetInfo)

	blob, err := ParseNTLMv2Blob(raw)
	if err != nil {
		t.Fatalf("ParseNTLMv2Blob: %v", err)
	}
	if blob.Timestamp != 12345 {
		t.Errorf("timestamp = %d, want 12345", blob.Timestamp)
	}
	if blob.ClientNonce != nonce {
		t.Errorf("client nonce mismatch")
	}
	if len(blob.TargetInfo) != 1 || blob.TargetInfo[0].Type != MsvAvNbComputerName {
		t.Errorf("target info mismatch: %+v", blob.TargetInfo)
	}
}

func TestValidateResponseWrongLengthRejectedWithoutHashing(t *testing.T) {
	if ValidateNTResponse(nil, nil, []byte{1, 2, 3}) {
		t.Fatalf("short response must be rejected")
	}
	if ValidateNTLMv2Response(nil, nil, make([]byte, 10)) {
		t.Fatalf("short v2 response must be rejected")
	}
}

func TestServerAuthenticate(t *testing.T) {
	srv := NewServer("DOMAIN")
	srv.AddAccount("alice", "Password")

	sc, err := srv.Challenge()
	if err != nil {
		t.Fatalf("Challenge: %v", err)
	}

	ntHash := NTHash("Password")
	nt := NTResponse(ntHash, sc[:])
	lm := LMResponse(LMHash("Password"), sc[:])

	if !srv.Authenticate("alice", sc, lm, nt) {
		t.Fatalf("expected authentication to succeed")
	}
	if srv.Authenticate("alice", sc, lm, []byte("garbage-response-of-wrong-len!!")) {
		t.Fatalf("expected garbage response to fail")
	}
	if srv.Authenticate("bob", sc, lm, nt) {
		t.Fatalf("unknown user must fail")
	}
}
