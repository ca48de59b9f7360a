package export

import (
	"bytes"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

const (
	userSection   = "user_documents/"
	sampleSection = "sample_documents/"
	summaryEntry  = "summary.txt"
)

// archive accumulates package entries into an in-memory deflate ZIP.
type archive struct {
	buf      bytes.Buffer
	zw       *zip.Writer
	modified time.Time
}

func newArchive(modified time.Time) *archive {
	a := &archive{modified: modified}
	a.zw = zip.NewWriter(&a.buf)
	a.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	return a
}

// dir adds an explicit directory entry; name must end with "/".
func (a *archive) dir(name string) error {
	_, err := a.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Modified: a.modified})
	return err
}

func (a *archive) add(name string, data []byte) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: a.modified})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (a *archive) addText(name, text string) error {
	return a.add(name, []byte(text))
}

// bytes finalises the archive. No entries may be added afterwards.
func (a *archive) bytes() ([]byte, error) {
	if err := a.zw.Close(); err != nil {
		return nil, err
	}
	return a.buf.Bytes(), nil
}
