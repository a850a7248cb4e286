package pointcloud

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type plyType struct {
	size   int
	decode func(b []byte, order binary.ByteOrder) float64
}

var plyTypes = map[string]plyType{
	"char":    {1, func(b []byte, _ binary.ByteOrder) float64 { return float64(int8(b[0])) }},
	"uchar":   {1, func(b []byte, _ binary.ByteOrder) float64 { return float64(b[0]) }},
	"short":   {2, func(b []byte, o binary.ByteOrder) float64 { return float64(int16(o.Uint16(b))) }},
	"ushort":  {2, func(b []byte, o binary.ByteOrder) float64 { return float64(o.Uint16(b)) }},
	"int":     {4, func(b []byte, o binary.ByteOrder) float64 { return float64(int32(o.Uint32(b))) }},
	"uint":    {4, func(b []byte, o binary.ByteOrder) float64 { return float64(o.Uint32(b)) }},
	"float":   {4, func(b []byte, o binary.ByteOrder) float64 { return float64(math.Float32frombits(o.Uint32(b))) }},
	"double":  {8, func(b []byte, o binary.ByteOrder) float64 { return math.Float64frombits(o.Uint64(b)) }},
	"int8":    {1, func(b []byte, _ binary.ByteOrder) float64 { return float64(int8(b[0])) }},
	"uint8":   {1, func(b []byte, _ binary.ByteOrder) float64 { return float64(b[0]) }},
	"int16":   {2, func(b []byte, o binary.ByteOrder) float64 { return float64(int16(o.Uint16(b))) }},
	"uint16":  {2, func(b []byte, o binary.ByteOrder) float64 { return float64(o.Uint16(b)) }},
	"int32":   {4, func(b []byte, o binary.ByteOrder) float64 { return float64(int32(o.Uint32(b))) }},
	"uint32":  {4, func(b []byte, o binary.ByteOrder) float64 { return float64(o.Uint32(b)) }},
	"float32": {4, func(b []byte, o binary.ByteOrder) float64 { return float64(math.Float32frombits(o.Uint32(b))) }},
	"float64": {8, func(b []byte, o binary.ByteOrder) float64 { return math.Float64frombits(o.Uint64(b)) }},
}

type plyProperty struct {
	name  string
	typ   plyType
	list  bool
	count plyType // type of the list length prefix
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

type plyHeader struct {
	format   string
	elements []plyElement
	comments []string
}

// ReadPLY decodes the vertex element of a PLY file. Every scalar vertex
// property becomes a column; list properties and other elements are
// skipped.
func ReadPLY(r io.Reader) (*Cloud, error) {
	br := bufio.NewReader(r)
	h, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	c := &Cloud{Comments: h.comments}
	for _, el := range h.elements {
		isVertex := el.name == "vertex"
		if isVertex {
			for _, p := range el.props {
				if !p.list {
					c.Columns = append(c.Columns, p.name)
				}
			}
			c.Data = make([]float64, 0, el.count*len(c.Columns))
		}

		var read func(plyElement, bool, *Cloud) error
		switch h.format {
		case "ascii":
			read = func(el plyElement, keep bool, c *Cloud) error { return readPLYASCIIRecord(br, el, keep, c) }
		case "binary_little_endian":
			read = func(el plyElement, keep bool, c *Cloud) error { return readPLYBinaryRecord(br, binary.LittleEndian, el, keep, c) }
		case "binary_big_endian":
			read = func(el plyElement, keep bool, c *Cloud) error { return readPLYBinaryRecord(br, binary.BigEndian, el, keep, c) }
		}
		for n := 0; n < el.count; n++ {
			if err := read(el, isVertex, c); err != nil {
				return nil, fmt.Errorf("%w: %s %d: %v", ErrFormat, el.name, n, err)
			}
		}
		if isVertex {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: no vertex element", ErrFormat)
}

func readPLYHeader(br *bufio.Reader) (*plyHeader, error) {
	h := &plyHeader{}
	first := true
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if first {
			if line != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrFormat)
			}
			first = false
			continue
		}
		keyword, rest, _ := strings.Cut(line, " ")
		fields := strings.Fields(rest)
		switch keyword {
		case "format":
			if len(fields) < 1 {
				return nil, fmt.Errorf("%w: bad format line %q", ErrFormat, line)
			}
			switch fields[0] {
			case "ascii", "binary_little_endian", "binary_big_endian":
				h.format = fields[0]
			default:
				return nil, fmt.Errorf("%w: unsupported format %q", ErrFormat, fields[0])
			}
		case "comment":
			h.comments = append(h.comments, rest)
		case "obj_info", "":
		case "element":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: bad element line %q", ErrFormat, line)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrFormat, fields[1])
			}
			h.elements = append(h.elements, plyElement{name: fields[0], count: n})
		case "property":
			if len(h.elements) == 0 {
				return nil, fmt.Errorf("%w: property before element", ErrFormat)
			}
			p, err := parsePLYProperty(fields)
			if err != nil {
				return nil, err
			}
			el := &h.elements[len(h.elements)-1]
			el.props = append(el.props, p)
		case "end_header":
			if h.format == "" {
				return nil, fmt.Errorf("%w: missing format line", ErrFormat)
			}
			return h, nil
		default:
			return nil, fmt.Errorf("%w: unknown header keyword %q", ErrFormat, keyword)
		}
	}
}

func parsePLYProperty(fields []string) (plyProperty, error) {
	if len(fields) == 4 && fields[0] == "list" {
		count, ok1 := plyTypes[fields[1]]
		typ, ok2 := plyTypes[fields[2]]
		if !ok1 || !ok2 {
			return plyProperty{}, fmt.Errorf("%w: bad list property %v", ErrFormat, fields)
		}
		return plyProperty{name: fields[3], typ: typ, list: true, count: count}, nil
	}
	if len(fields) != 2 {
		return plyProperty{}, fmt.Errorf("%w: bad property %v", ErrFormat, fields)
	}
	typ, ok := plyTypes[fields[0]]
	if !ok {
		return plyProperty{}, fmt.Errorf("%w: unknown property type %q", ErrFormat, fields[0])
	}
	return plyProperty{name: fields[1], typ: typ}, nil
}

func readPLYASCIIRecord(br *bufio.Reader, el plyElement, keep bool, c *Cloud) error {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return err
	}
	fields := strings.Fields(line)
	pos := 0
	next := func() (float64, error) {
		if pos >= len(fields) {
			return 0, fmt.Errorf("short record %q", strings.TrimSpace(line))
		}
		v, err := strconv.ParseFloat(fields[pos], 64)
		pos++
		return v, err
	}
	for _, p := range el.props {
		if p.list {
			n, err := next()
			if err != nil {
				return err
			}
			pos += int(n)
			continue
		}
		v, err := next()
		if err != nil {
			return err
		}
		if keep {
			c.Data = append(c.Data, v)
		}
	}
	return nil
}

func readPLYBinaryRecord(br *bufio.Reader, order binary.ByteOrder, el plyElement, keep bool, c *Cloud) error {
	var buf [8]byte
	for _, p := range el.props {
		if p.list {
			if _, err := io.ReadFull(br, buf[:p.count.size]); err != nil {
				return err
			}
			n := int(p.count.decode(buf[:p.count.size], order))
			if _, err := br.Discard(n * p.typ.size); err != nil {
				return err
			}
			continue
		}
		if _, err := io.ReadFull(br, buf[:p.typ.size]); err != nil {
			return err
		}
		if keep {
			c.Data = append(c.Data, p.typ.decode(buf[:p.typ.size], order))
		}
	}
	return nil
}
