package photonmap

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// DumpOBJ writes every stored photon position as a Wavefront OBJ vertex
// for quick visual inspection in a mesh viewer. Viewers tend to drop
// vertices that no face references, so each vertex is tied into a
// degenerate filler triangle with its two predecessors.
func (m *Map) DumpOBJ(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating OBJ dump %s", path)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "o PhotonMap")
	for i := 1; i <= m.photonCount; i++ {
		p := &m.photons[i]
		fmt.Fprintf(w, "v %f %f %f\n", p.Pos[0], p.Pos[1], p.Pos[2])
	}
	for i := 3; i <= m.photonCount; i++ {
		fmt.Fprintf(w, "f %d %d %d\n", i, i-1, i-2)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing OBJ dump %s", path)
	}
	return errors.Wrapf(f.Close(), "closing OBJ dump %s", path)
}
