// Package c2s implements the client-to-server application packet bodies:
// Connect/ConnectionApproval (join handshake), Discovery/DiscoveryRequest
// (server query), ExtraDataChange/ExtraDataRequest, and PlayerPosition.
// Grounded in original_source/src/network/packets/c2s/*.rs.
package c2s

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
)

// ConnectHail is the join-handshake body shared by the Lidgren-level Connect
// hail payload and the application-level ConnectionApprovalPacket: both
// encode the same array-of-6 shape
// [mods, [username], version, password_hash?, hail_payload?, hail_signature?].
type ConnectHail struct {
	Mods           []string
	Username       string
	Version        string
	PasswordHash   []byte // nil if the client sent no hash
	HailPayload    *string
	HailSignature  *string
}

// Decode parses a ConnectHail body from its MessagePack bytes.
func Decode(body []byte) (ConnectHail, error) {
	r := msgpack.NewReader(body)

	n, err := r.ExpectArrayHeader()
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail: %w", err)
	}
	if n != 6 {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail has %d entries, want 6", n)
	}

	modCount, err := r.ExpectArrayHeader()
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail mod count: %w", err)
	}
	mods := make([]string, modCount)
	for i := range mods {
		mods[i], err = r.ExpectString()
		if err != nil {
			return ConnectHail{}, fmt.Errorf("c2s: connect hail mod %d: %w", i, err)
		}
	}

	userOptCount, err := r.ExpectArrayHeader()
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail user option count: %w", err)
	}
	if userOptCount != 1 {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail user option count is %d, want 1", userOptCount)
	}
	username, err := r.ExpectString()
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail username: %w", err)
	}

	version, err := r.ExpectString()
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail version: %w", err)
	}

	var passwordHash []byte
	if !r.IsNil() {
		passwordHash, err = r.ExpectBinary()
		if err != nil {
			return ConnectHail{}, fmt.Errorf("c2s: connect hail password hash: %w", err)
		}
	} else {
		r.ExpectNil()
	}

	hailPayload, err := readOptionalString(r)
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail hail payload: %w", err)
	}
	hailSignature, err := readOptionalString(r)
	if err != nil {
		return ConnectHail{}, fmt.Errorf("c2s: connect hail hail signature: %w", err)
	}

	return ConnectHail{
		Mods:          mods,
		Username:      username,
		Version:       version,
		PasswordHash:  passwordHash,
		HailPayload:   hailPayload,
		HailSignature: hailSignature,
	}, nil
}

func readOptionalString(r *msgpack.Reader) (*string, error) {
	if r.IsNil() {
		r.ExpectNil()
		return nil, nil
	}
	s, err := r.ExpectString()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode serializes h back to its MessagePack body (used by tests and by
// any client-side tooling built atop this package).
func (h ConnectHail) Encode() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(6)

	w.WriteArrayHeader(len(h.Mods))
	for _, m := range h.Mods {
		w.WriteString(m)
	}

	w.WriteArrayHeader(1)
	w.WriteString(h.Username)

	w.WriteString(h.Version)

	if h.PasswordHash == nil {
		w.WriteNil()
	} else {
		w.WriteBinary(h.PasswordHash)
	}
	writeOptionalString(w, h.HailPayload)
	writeOptionalString(w, h.HailSignature)

	return w.Bytes()
}

func writeOptionalString(w *msgpack.Writer, s *string) {
	if s == nil {
		w.WriteNil()
		return
	}
	w.WriteString(*s)
}
