package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an OS version as numeric components. "17.5" and the inventory
// token "17-5" parse to the same Version.
type Version []int

// ParseVersion accepts dotted ("17.5") and token ("17-5") forms.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty version")
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '-' })
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid version %q", s)
	}

	v := make(Version, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version %q", s)
		}
		v = append(v, n)
	}
	return v, nil
}

// Compare orders versions by component; missing trailing components count
// as zero, so 17 == 17.0.
func (v Version) Compare(o Version) int {
	n := len(v)
	if len(o) > n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		a, b := v.at(i), o.at(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

func (v Version) at(i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// Major returns the first component.
func (v Version) Major() int {
	return v.at(0)
}

// Token renders the inventory form, at least two components: 17 → "17-0".
func (v Version) Token() string {
	return v.join("-")
}

// String renders the dotted form, at least two components.
func (v Version) String() string {
	return v.join(".")
}

func (v Version) join(sep string) string {
	parts := make([]string, 0, len(v)+1)
	for _, n := range v {
		parts = append(parts, strconv.Itoa(n))
	}
	for len(parts) < 2 {
		parts = append(parts, "0")
	}
	return strings.Join(parts, sep)
}

// ToToken converts a dotted version to the inventory token form.
func ToToken(s string) (string, error) {
	v, err := ParseVersion(s)
	if err != nil {
		return "", err
	}
	return v.Token(), nil
}
