package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadASC decodes a whitespace or comma separated text cloud as written by
// CloudCompare. Lines starting with '#' or '//' are comments; a
// "# Format: X Y Z ..." comment (or a non-numeric first line) names the
// columns. Without one, the columns are called x, y, z, v3, v4, ...
func ReadASC(r io.Reader) (*Cloud, error) {
	c := &Cloud{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if comment, ok := ascComment(text); ok {
			c.Comments = append(c.Comments, comment)
			if rest, ok := strings.CutPrefix(comment, "Format:"); ok && c.Columns == nil {
				c.Columns = lowerFields(rest)
			}
			continue
		}

		fields := splitASC(text)
		values := make([]float64, len(fields))
		numeric := true
		for n, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				numeric = false
				break
			}
			values[n] = v
		}
		if !numeric {
			if len(c.Data) == 0 && c.Columns == nil {
				c.Columns = lowerFields(strings.Join(fields, " "))
				continue
			}
			return nil, fmt.Errorf("%w: line %d: non-numeric record %q", ErrFormat, line, text)
		}

		if c.Columns == nil {
			c.Columns = defaultColumns(len(values))
		}
		if len(values) != len(c.Columns) {
			return nil, fmt.Errorf("%w: line %d: got %d values, want %d", ErrFormat, line, len(values), len(c.Columns))
		}
		c.Data = append(c.Data, values...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if c.Columns == nil {
		return nil, fmt.Errorf("%w: empty file", ErrFormat)
	}
	return c, nil
}

func ascComment(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "//"):
		return strings.TrimSpace(line[2:]), true
	case strings.HasPrefix(line, "#"):
		return strings.TrimSpace(line[1:]), true
	}
	return "", false
}

func splitASC(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
}

func lowerFields(s string) []string {
	fields := splitASC(s)
	for n := range fields {
		fields[n] = strings.ToLower(fields[n])
	}
	return fields
}

func defaultColumns(n int) []string {
	cols := make([]string, n)
	for k := range cols {
		switch k {
		case 0:
			cols[k] = "x"
		case 1:
			cols[k] = "y"
		case 2:
			cols[k] = "z"
		default:
			cols[k] = "v" + strconv.Itoa(k)
		}
	}
	return cols
}
