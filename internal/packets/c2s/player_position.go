package c2s

import (
	"fmt"

	"github.com/ecconia/logicworldd/internal/msgpack"
	"github.com/ecconia/logicworldd/internal/packets"
)

// Quaternion is an XYZA rotation quaternion, wire-ordered X, Y, Z, A.
type Quaternion struct{ X, Y, Z, A float32 }

// Vector3 is an XYZ position or direction.
type Vector3 struct{ X, Y, Z float32 }

// PlayerPosition is the array-of-1-containing-array-of-7 body describing a
// player's current pose: [BaseWorldRotation, FeetPosition,
// HeadHorizontalRotation, HeadVerticalRotation, Scale, Flying, Teleport].
type PlayerPosition struct {
	BaseWorldRotation      Quaternion
	FeetPosition           Vector3
	HeadHorizontalRotation float32
	HeadVerticalRotation   float32
	Scale                  float32
	Flying                 bool
	Teleport               bool
}

// DecodePlayerPosition parses a PlayerPositionPacket payload.
func DecodePlayerPosition(payload []byte) (PlayerPosition, error) {
	id, body, err := packets.DecodeFramed(payload)
	if err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position: %w", err)
	}
	if id != packets.PlayerPosition {
		return PlayerPosition{}, fmt.Errorf("c2s: player position: wrong packet id %d", id)
	}

	r := msgpack.NewReader(body)
	if n, err := r.ExpectArrayHeader(); err != nil || n != 1 {
		return PlayerPosition{}, fmt.Errorf("c2s: player position outer array: n=%d err=%v", n, err)
	}
	if n, err := r.ExpectArrayHeader(); err != nil || n != 7 {
		return PlayerPosition{}, fmt.Errorf("c2s: player position data array: n=%d err=%v", n, err)
	}

	var p PlayerPosition
	if n, err := r.ExpectArrayHeader(); err != nil || n != 4 {
		return PlayerPosition{}, fmt.Errorf("c2s: player position rotation array: n=%d err=%v", n, err)
	}
	var err error
	if p.BaseWorldRotation.X, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position rotation x: %w", err)
	}
	if p.BaseWorldRotation.Y, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position rotation y: %w", err)
	}
	if p.BaseWorldRotation.Z, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position rotation z: %w", err)
	}
	if p.BaseWorldRotation.A, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position rotation a: %w", err)
	}

	if n, err := r.ExpectArrayHeader(); err != nil || n != 3 {
		return PlayerPosition{}, fmt.Errorf("c2s: player position feet array: n=%d err=%v", n, err)
	}
	if p.FeetPosition.X, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position feet x: %w", err)
	}
	if p.FeetPosition.Y, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position feet y: %w", err)
	}
	if p.FeetPosition.Z, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position feet z: %w", err)
	}

	if p.HeadHorizontalRotation, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position head h: %w", err)
	}
	if p.HeadVerticalRotation, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position head v: %w", err)
	}
	if p.Scale, err = r.ExpectFloat32(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position scale: %w", err)
	}
	if p.Flying, err = r.ExpectBool(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position flying: %w", err)
	}
	if p.Teleport, err = r.ExpectBool(); err != nil {
		return PlayerPosition{}, fmt.Errorf("c2s: player position teleport: %w", err)
	}

	return p, nil
}

// Encode serializes p into a PlayerPositionPacket payload.
func (p PlayerPosition) Encode() []byte {
	w := msgpack.NewWriter()
	w.WriteArrayHeader(1)
	w.WriteArrayHeader(7)

	w.WriteArrayHeader(4)
	w.WriteFloat32(p.BaseWorldRotation.X)
	w.WriteFloat32(p.BaseWorldRotation.Y)
	w.WriteFloat32(p.BaseWorldRotation.Z)
	w.WriteFloat32(p.BaseWorldRotation.A)

	w.WriteArrayHeader(3)
	w.WriteFloat32(p.FeetPosition.X)
	w.WriteFloat32(p.FeetPosition.Y)
	w.WriteFloat32(p.FeetPosition.Z)

	w.WriteFloat32(p.HeadHorizontalRotation)
	w.WriteFloat32(p.HeadVerticalRotation)
	w.WriteFloat32(p.Scale)
	w.WriteBool(p.Flying)
	w.WriteBool(p.Teleport)

	return packets.EncodeFramed(packets.PlayerPosition, w.Bytes())
}
