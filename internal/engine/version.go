package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

var ErrUnsupportedVersion = errors.New("unsupported engine version")

type Distribution string

const (
	Elasticsearch Distribution = "elasticsearch"
	OpenSearch    Distribution = "opensearch"
)

// Line is a range of engine versions that share mapping defaults and wire spellings.
type Line int

const (
	LineES56 Line = iota + 1
	LineES6
	LineES7
	LineOpenSearch
)

func (l Line) String() string {
	switch l {
	case LineES56:
		return "elasticsearch-5.6"
	case LineES6:
		return "elasticsearch-6"
	case LineES7:
		return "elasticsearch-7"
	case LineOpenSearch:
		return "opensearch"
	default:
		return fmt.Sprintf("line(%d)", int(l))
	}
}

type Version struct {
	Distribution Distribution
	Semver       semver.Version
}

func (v Version) String() string {
	return string(v.Distribution) + ":" + v.Semver.String()
}

// ParseVersion accepts "7.17.3", "elasticsearch:6.8.0" or "opensearch:2.11.0".
// Missing minor/patch components and pre-release suffixes such as "-SNAPSHOT" are tolerated.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty version", ErrUnsupportedVersion)
	}

	dist := Elasticsearch
	if i := strings.IndexByte(s, ':'); i >= 0 {
		d, err := ParseDistribution(s[:i])
		if err != nil {
			return Version{}, err
		}
		dist = d
		s = s[i+1:]
	}

	sv, err := semver.ParseTolerant(s)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, s, err)
	}
	v := Version{Distribution: dist, Semver: sv}
	if _, err := v.Line(); err != nil {
		return Version{}, err
	}
	return v, nil
}

func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "elasticsearch", "es", "default", "oss":
		return Elasticsearch, nil
	case "opensearch", "os":
		return OpenSearch, nil
	default:
		return "", fmt.Errorf("%w: distribution %q", ErrUnsupportedVersion, s)
	}
}

var (
	minES56 = semver.MustParse("5.6.0")
	minES9  = semver.MustParse("9.0.0")
	minOS4  = semver.MustParse("4.0.0")
)

// Line resolves the version line. Elasticsearch 8.x shares the 7.x line.
func (v Version) Line() (Line, error) {
	sv := v.Semver
	sv.Pre = nil
	sv.Build = nil

	switch v.Distribution {
	case OpenSearch:
		if sv.Major < 1 || sv.GTE(minOS4) {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
		}
		return LineOpenSearch, nil
	case Elasticsearch:
		switch {
		case sv.LT(minES56):
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
		case sv.Major == 5:
			return LineES56, nil
		case sv.Major == 6:
			return LineES6, nil
		case sv.LT(minES9):
			return LineES7, nil
		default:
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
		}
	default:
		return 0, fmt.Errorf("%w: distribution %q", ErrUnsupportedVersion, v.Distribution)
	}
}

// MustLine is Line for versions already accepted by ParseVersion.
func (v Version) MustLine() Line {
	l, err := v.Line()
	if err != nil {
		panic(err)
	}
	return l
}
