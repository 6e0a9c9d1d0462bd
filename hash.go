package char64

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

// sha1File returns the uppercase hex SHA-1 of the file contents, used
// as the identity of a source image in the history database.
func sha1File(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err = io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%X", h.Sum(nil)), nil
}
