package manifest

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/kiln-archive/kiln/pkg/hash"
)

// Verify streams a revision manifest, hashing each line up to but excluding
// the trailer, and compares the result against the trailer's recorded
// hash. A missing or mismatching trailer fails; the message for a mismatch
// is "hashsum mismatch" verbatim, matching the archive's historical
// diagnostic.
func Verify(r io.Reader, algorithm hash.Algorithm) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	hasher := hash.New(algorithm)
	var trailerHex string
	found := false

	for scanner.Scan() {
		line := scanner.Text()
		if rest, ok := strings.CutPrefix(line, endMarker+":"); ok {
			trailerHex = rest
			found = true
			break
		}
		hasher.Write([]byte(line))
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "unable to read manifest")
	}
	if !found {
		return errors.Errorf("manifest missing %s trailer", endMarker)
	}

	expected, err := hash.FromHex(algorithm, trailerHex)
	if err != nil {
		return errors.Wrap(err, "invalid trailer hash")
	}
	if !expected.Equal(hasher.Sum()) {
		return errors.New("hashsum mismatch")
	}
	return nil
}
