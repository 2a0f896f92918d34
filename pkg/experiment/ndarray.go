package experiment

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

// NDArray is a dense, row-major array of float64.
type NDArray struct {
	Shape []int
	Data  []float64
}

// NewNDArray checks that data fits shape.
func NewNDArray(shape []int, data []float64) (NDArray, error) {
	if n := shapeSize(shape); n != len(data) {
		return NDArray{}, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "shape",
			Value:   shape,
			Message: fmt.Sprintf("holds %d elements but %d were provided", n, len(data)),
		})
	}
	return NDArray{Shape: shape, Data: data}, nil
}

// AsNDArray converts the values numeric savers accept: NDArray, *NDArray, []float64 and
// rectangular [][]float64.
func AsNDArray(data any) (NDArray, error) {
	switch t := data.(type) {
	case NDArray:
		return NewNDArray(t.Shape, t.Data)
	case *NDArray:
		return NewNDArray(t.Shape, t.Data)
	case []float64:
		return NDArray{Shape: []int{len(t)}, Data: t}, nil
	case [][]float64:
		cols := 0
		if len(t) > 0 {
			cols = len(t[0])
		}
		flat := make([]float64, 0, len(t)*cols)
		for i, row := range t {
			if len(row) != cols {
				return NDArray{}, errors.WithStack(&expctlerrors.ErrInvalidArgument{
					Name:    fmt.Sprintf("row %d", i),
					Value:   len(row),
					Message: fmt.Sprintf("expected %d columns", cols),
				})
			}
			flat = append(flat, row...)
		}
		return NDArray{Shape: []int{len(t), cols}, Data: flat}, nil
	default:
		return NDArray{}, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "data",
			Value:   fmt.Sprintf("%T", data),
			Message: "not a numeric array",
		})
	}
}

func shapeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

var npyMagic = []byte("\x93NUMPY")

// NpySaver writes a numeric array in the .npy format (version 1.0, little-endian float64),
// readable with numpy.load.
func NpySaver(path string, data any) error {
	array, err := AsNDArray(data)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	w := bufio.NewWriter(f)
	if err := writeNpy(w, array); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.WithStack(err)
	}
	return errors.WithStack(f.Close())
}

// NpyLoader reads a float64 .npy file into an NDArray.
func NpyLoader(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	array, err := readNpy(bufio.NewReader(f), info.Size())
	if err != nil {
		return nil, errors.WithMessagef(err, "reading %s", path)
	}
	return array, nil
}

func writeNpy(w io.Writer, array NDArray) error {
	dims := make([]string, len(array.Shape))
	for i, d := range array.Shape {
		dims[i] = strconv.Itoa(d)
	}
	shape := strings.Join(dims, ", ")
	if len(dims) == 1 {
		shape += ","
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shape)
	// magic + version + header length + header + '\n' is padded to a multiple of 64 bytes.
	preamble := len(npyMagic) + 2 + 2
	padding := 64 - (preamble+len(header)+1)%64
	if padding == 64 {
		padding = 0
	}
	header += strings.Repeat(" ", padding) + "\n"

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(binary.Write(w, binary.LittleEndian, array.Data))
}

var (
	npyDescr   = regexp.MustCompile(`'descr':\s*'([^']*)'`)
	npyFortran = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	npyShape   = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// readNpy reads an npy stream of size bytes. The header is checked against size before
// anything it describes is allocated.
func readNpy(r io.Reader, size int64) (NDArray, error) {
	magic := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, magic); err != nil {
		return NDArray{}, errors.WithStack(err)
	}
	if !bytes.Equal(magic[:len(npyMagic)], npyMagic) {
		return NDArray{}, errors.New("not an npy file")
	}
	preamble := int64(len(magic))
	var headerLen int
	switch major := magic[len(npyMagic)]; major {
	case 1:
		var l uint16
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return NDArray{}, errors.WithStack(err)
		}
		headerLen = int(l)
		preamble += 2
	case 2, 3:
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return NDArray{}, errors.WithStack(err)
		}
		headerLen = int(l)
		preamble += 4
	default:
		return NDArray{}, errors.Errorf("unsupported npy version %d", major)
	}
	remaining := size - preamble - int64(headerLen)
	if remaining < 0 {
		return NDArray{}, errors.Errorf("npy header length %d exceeds the file size %d", headerLen, size)
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return NDArray{}, errors.WithStack(err)
	}

	descr := npyDescr.FindSubmatch(header)
	if descr == nil || string(descr[1]) != "<f8" {
		return NDArray{}, errors.Errorf("unsupported npy dtype in header %q", header)
	}
	if fortran := npyFortran.FindSubmatch(header); fortran == nil || string(fortran[1]) != "False" {
		return NDArray{}, errors.Errorf("fortran ordered npy files are not supported")
	}
	shapeMatch := npyShape.FindSubmatch(header)
	if shapeMatch == nil {
		return NDArray{}, errors.Errorf("npy header %q has no shape", header)
	}
	shape := []int{}
	for _, s := range strings.Split(string(shapeMatch[1]), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		d, err := strconv.Atoi(s)
		if err != nil {
			return NDArray{}, errors.Wrapf(err, "invalid npy shape %q", shapeMatch[1])
		}
		if d < 0 {
			return NDArray{}, errors.Errorf("invalid npy shape %q: negative dimension", shapeMatch[1])
		}
		shape = append(shape, d)
	}

	// Each partial product is bounded by the element count present, so it can't overflow.
	elements := remaining / 8
	n := int64(1)
	for _, d := range shape {
		if d != 0 && n > elements/int64(d) {
			return NDArray{}, errors.Errorf("npy shape %q needs more data than the %d bytes present", shapeMatch[1], remaining)
		}
		n *= int64(d)
	}
	data := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return NDArray{}, errors.WithStack(err)
	}
	return NDArray{Shape: shape, Data: data}, nil
}

// Equal reports whether a and b have the same shape and elements. NaNs compare equal.
func (a NDArray) Equal(b NDArray) bool {
	if len(a.Shape) != len(b.Shape) || len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Shape {
		if a.Shape[i] != b.Shape[i] {
			return false
		}
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] && !(math.IsNaN(a.Data[i]) && math.IsNaN(b.Data[i])) {
			return false
		}
	}
	return true
}
