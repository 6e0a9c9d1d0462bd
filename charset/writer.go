package charset

import (
	"io"
	"strconv"
)

// Array names used in the generated headers, matching what the C64
// display code includes.
const (
	ScreenMapName = "img"
	CharmapName   = "charmap"
	ColorMapName  = "clrs"
)

type encoder struct {
	w io.Writer
}

// writeArray writes data as a C array declaration of unsigned bytes:
// const unsigned char name[]={0,1,...};
func (e *encoder) writeArray(name string, data []byte) error {
	buf := make([]byte, 0, len(data)*4+len(name)+32)
	buf = append(buf, "const unsigned char "...)
	buf = append(buf, name...)
	buf = append(buf, "[]={"...)
	for i, v := range data {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(v), 10)
	}
	buf = append(buf, "};"...)

	_, err := e.w.Write(buf)
	return err
}

// WriteScreenMap writes the 1000 tile pattern indices to w as the img
// array.
func (s *Screen) WriteScreenMap(w io.Writer) error {
	e := encoder{w: w}
	return e.writeArray(ScreenMapName, s.Chars[:])
}

// WriteCharmap writes the 2048 byte pattern table to w as the charmap
// array, zero-padded beyond the interned patterns.
func (s *Screen) WriteCharmap(w io.Writer) error {
	e := encoder{w: w}
	return e.writeArray(CharmapName, s.Table.Bytes())
}

// WriteColorMap writes the 1000 tile color indices to w as the clrs
// array.
func (s *Screen) WriteColorMap(w io.Writer) error {
	e := encoder{w: w}
	return e.writeArray(ColorMapName, s.Colors[:])
}
