package photonmap

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-mapper/pkg/core"
)

// On-disk format constants. The magic and version are checked on load so
// an incompatible file fails fast instead of producing a garbage map.
const (
	fileMagic   = "PMAP"
	fileVersion = uint32(1)

	// Bytes per photon record: position, two compressed directions,
	// RGBE power, depth and split axis
	photonRecordSize = 3*4 + 2 + 2 + 4 + 2 + 1
)

// Serialize writes the map to w in a versioned little-endian binary
// format. The full backing array is written including unused capacity,
// so a deserialized map can keep storing photons if it was not yet
// balanced.
func (m *Map) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(fileMagic); err != nil {
		return errors.Wrap(err, "writing photon map magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, fileVersion); err != nil {
		return errors.Wrap(err, "writing photon map version")
	}

	bounds := [6]float32{
		float32(m.aabb.Min.X), float32(m.aabb.Min.Y), float32(m.aabb.Min.Z),
		float32(m.aabb.Max.X), float32(m.aabb.Max.Y), float32(m.aabb.Max.Z),
	}
	if err := binary.Write(bw, binary.LittleEndian, bounds); err != nil {
		return errors.Wrap(err, "writing photon map bounds")
	}

	balanced := uint8(0)
	if m.balanced {
		balanced = 1
	}
	header := struct {
		Balanced       uint8
		MaxPhotons     uint64
		LastInnerNode  uint64
		LastRChildNode uint64
		Scale          float32
		PhotonCount    uint64
	}{balanced, uint64(m.maxPhotons), uint64(m.lastInnerNode), uint64(m.lastRChildNode), float32(m.scale), uint64(m.photonCount)}
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "writing photon map header")
	}

	record := make([]byte, photonRecordSize)
	for i := 1; i <= m.maxPhotons; i++ {
		encodePhotonRecord(record, &m.photons[i])
		if _, err := bw.Write(record); err != nil {
			return errors.Wrapf(err, "writing photon record %d", i)
		}
	}

	return errors.Wrap(bw.Flush(), "flushing photon map")
}

// Deserialize reads a map previously written by Serialize
func Deserialize(r io.Reader) (*Map, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, errors.Wrap(err, "reading photon map magic")
	}
	if string(magic) != fileMagic {
		return nil, errors.Errorf("not a photon map file (magic %q)", magic)
	}

	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "reading photon map version")
	}
	if version != fileVersion {
		return nil, errors.Errorf("unsupported photon map version %d (want %d)", version, fileVersion)
	}

	var bounds [6]float32
	if err := binary.Read(br, binary.LittleEndian, &bounds); err != nil {
		return nil, errors.Wrap(err, "reading photon map bounds")
	}

	var header struct {
		Balanced       uint8
		MaxPhotons     uint64
		LastInnerNode  uint64
		LastRChildNode uint64
		Scale          float32
		PhotonCount    uint64
	}
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "reading photon map header")
	}
	if header.PhotonCount > header.MaxPhotons {
		return nil, errors.Errorf("corrupt photon map: count %d exceeds capacity %d",
			header.PhotonCount, header.MaxPhotons)
	}

	m := New(int(header.MaxPhotons))
	m.photonCount = int(header.PhotonCount)
	m.lastInnerNode = int(header.LastInnerNode)
	m.lastRChildNode = int(header.LastRChildNode)
	m.scale = float64(header.Scale)
	m.balanced = header.Balanced != 0
	m.aabb.Min = core3(bounds[0], bounds[1], bounds[2])
	m.aabb.Max = core3(bounds[3], bounds[4], bounds[5])

	record := make([]byte, photonRecordSize)
	for i := 1; i <= m.maxPhotons; i++ {
		if _, err := io.ReadFull(br, record); err != nil {
			return nil, errors.Wrapf(err, "reading photon record %d", i)
		}
		decodePhotonRecord(record, &m.photons[i])
	}

	return m, nil
}

// SaveFile serializes the map to a file, creating or truncating it
func (m *Map) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating photon map file %s", path)
	}
	if err := m.Serialize(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing photon map file %s", path)
}

// LoadFile deserializes a map from a file written by SaveFile
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening photon map file %s", path)
	}
	defer f.Close()

	m, err := Deserialize(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading photon map file %s", path)
	}
	return m, nil
}

func core3(x, y, z float32) core.Vec3 {
	return core.NewVec3(float64(x), float64(y), float64(z))
}

func fbits(f float32) uint32 { return math.Float32bits(f) }
func bitsf(b uint32) float32 { return math.Float32frombits(b) }

func encodePhotonRecord(buf []byte, p *Photon) {
	binary.LittleEndian.PutUint32(buf[0:], fbits(p.Pos[0]))
	binary.LittleEndian.PutUint32(buf[4:], fbits(p.Pos[1]))
	binary.LittleEndian.PutUint32(buf[8:], fbits(p.Pos[2]))
	buf[12] = p.Theta
	buf[13] = p.Phi
	buf[14] = p.ThetaN
	buf[15] = p.PhiN
	copy(buf[16:20], p.Power[:])
	binary.LittleEndian.PutUint16(buf[20:], p.Depth)
	buf[22] = p.Axis
}

func decodePhotonRecord(buf []byte, p *Photon) {
	p.Pos[0] = bitsf(binary.LittleEndian.Uint32(buf[0:]))
	p.Pos[1] = bitsf(binary.LittleEndian.Uint32(buf[4:]))
	p.Pos[2] = bitsf(binary.LittleEndian.Uint32(buf[8:]))
	p.Theta = buf[12]
	p.Phi = buf[13]
	p.ThetaN = buf[14]
	p.PhiN = buf[15]
	copy(p.Power[:], buf[16:20])
	p.Depth = binary.LittleEndian.Uint16(buf[20:])
	p.Axis = buf[22]
}
