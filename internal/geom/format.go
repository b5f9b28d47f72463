package geom

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// FormatVec encodes v as "(x, y, z)" with enough digits to round-trip.
func FormatVec(v r3.Vec) string {
	return formatComponents(v.X, v.Y, v.Z)
}

// FormatQuat encodes q as "(x, y, z, w)", imaginary parts first.
func FormatQuat(q quat.Number) string {
	return formatComponents(q.Imag, q.Jmag, q.Kmag, q.Real)
}

// ParseVec decodes the output of FormatVec. Malformed input yields the zero
// vector and false.
func ParseVec(s string) (r3.Vec, bool) {
	c, ok := parseComponents(s, 3)
	if !ok {
		return r3.Vec{}, false
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, true
}

// ParseQuat decodes the output of FormatQuat. Malformed input yields the
// identity and false.
func ParseQuat(s string) (quat.Number, bool) {
	c, ok := parseComponents(s, 4)
	if !ok {
		return Identity(), false
	}
	return quat.Number{Imag: c[0], Jmag: c[1], Kmag: c[2], Real: c[3]}, true
}

// ParsePose decodes the three-block form produced by Pose.String. Any
// malformed block falls back to the identity pose.
func ParsePose(s string) (Pose, bool) {
	blocks := splitBlocks(s)
	if len(blocks) != 3 {
		return IdentityPose(), false
	}
	pos, ok1 := ParseVec(blocks[0])
	rot, ok2 := ParseQuat(blocks[1])
	ori, ok3 := ParseVec(blocks[2])
	if !ok1 || !ok2 || !ok3 {
		return IdentityPose(), false
	}
	return Pose{Rotation: rot, Position: pos, Orientation: ori}, true
}

func formatComponents(vals ...float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func parseComponents(s string, n int) ([]float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func splitBlocks(s string) []string {
	var blocks []string
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			return blocks
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			return blocks
		}
		blocks = append(blocks, s[open:open+end+1])
		s = s[open+end+1:]
	}
}
