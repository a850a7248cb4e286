package pointcloud

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrNoCRS is returned when no projection comment is present.
var ErrNoCRS = errors.New("no projection comment")

// CRS identifies the coordinate reference system of a cloud, either as a UTM
// zone with hemisphere (e.g. "30N") or an EPSG code.
type CRS struct {
	Type string `json:"type"` // "UTM" or "EPSG"
	Code string `json:"code"`
}

var (
	utmComment  = regexp.MustCompile(`^projection: UTM ([0-9]{1,2}[NS])`)
	epsgComment = regexp.MustCompile(`^projection: EPSG ([0-9]{4,5})`)
)

// CRSFromComments scans PLY header comments for a projection line. A UTM
// zone takes precedence over an EPSG code; within one kind the last
// matching comment wins.
func CRSFromComments(comments []string) (CRS, error) {
	if code := lastMatch(utmComment, comments); code != "" {
		return CRS{Type: "UTM", Code: code}, nil
	}
	if code := lastMatch(epsgComment, comments); code != "" {
		return CRS{Type: "EPSG", Code: code}, nil
	}
	return CRS{}, ErrNoCRS
}

func lastMatch(re *regexp.Regexp, comments []string) string {
	var code string
	for _, c := range comments {
		if m := re.FindStringSubmatch(c); m != nil {
			code = m[1]
		}
	}
	return code
}

// EPSG returns the EPSG code of the CRS. UTM zones map onto the WGS84 UTM
// series (326zz north, 327zz south).
func (c CRS) EPSG() (int, error) {
	switch c.Type {
	case "EPSG":
		return strconv.Atoi(c.Code)
	case "UTM":
		if len(c.Code) < 2 {
			break
		}
		zone, err := strconv.Atoi(c.Code[:len(c.Code)-1])
		if err != nil || zone < 1 || zone > 60 {
			return 0, fmt.Errorf("invalid UTM zone %q", c.Code)
		}
		if c.Code[len(c.Code)-1] == 'S' {
			return 32700 + zone, nil
		}
		return 32600 + zone, nil
	}
	return 0, fmt.Errorf("unsupported CRS %s %q", c.Type, c.Code)
}

func (c CRS) String() string {
	if c.Type == "" {
		return "unknown"
	}
	return c.Type + " " + c.Code
}
