package resolved

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/depmerge/pkg/errors"
)

// rootIndex is the reserved index of Root in the text format.
const rootIndex = 0

var (
	headerPattern   = regexp.MustCompile(`^(\d+) ([^\[]+)\[([^\]]*)\]((?: #\d+\[[^\]]*\])*)$`)
	dependeePattern = regexp.MustCompile(` #(\d+)\[([^\]]*)\]`)
)

// MalformedFunc receives the 0-based number and raw text of a line that
// could not be decoded.
type MalformedFunc func(lineNo int, line string)

// Encode writes deps in the text format. Nodes are numbered from 1 in slice
// order. Every dependee must be Root or one of deps. Versions and artifact
// paths that would not decode back unchanged are rejected with
// ErrCodeInvalidManifest before anything is written.
func Encode(w io.Writer, deps []*Dependency) error {
	index := make(map[ID]int, len(deps)+1)
	index[Root] = rootIndex
	for i, d := range deps {
		if d.ID.IsRoot() || d.ID.IsZero() {
			return errors.New(errors.ErrCodeInvalidManifest, "node %d has no encodable id", i+1)
		}
		index[d.ID] = i + 1
	}
	for _, d := range deps {
		if err := checkEncodable(d, index); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	for i, d := range deps {
		fmt.Fprintf(bw, "%d %s[%s]", i+1, d.ID, d.SelectedVersion)
		for dependee, v := range d.Requests() {
			fmt.Fprintf(bw, " #%d[%s]", index[dependee], v)
		}
		bw.WriteByte('\n')
		for _, p := range d.artifacts {
			bw.WriteByte('\t')
			bw.WriteString(p)
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}

// checkEncodable reports the first field of d that Encode cannot write.
func checkEncodable(d *Dependency, index map[ID]int) error {
	if err := errors.ValidateVersion(d.SelectedVersion); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: selected version", d.ID)
	}
	for dependee, v := range d.Requests() {
		if _, ok := index[dependee]; !ok {
			return errors.New(errors.ErrCodeInvalidManifest,
				"%s: dependee %s is not part of the encoded graph", d.ID, dependee)
		}
		if err := errors.ValidateVersion(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s: version requested by %s", d.ID, dependee)
		}
	}
	for _, p := range d.artifacts {
		if p == "" || strings.TrimSpace(p) != p || strings.ContainsAny(p, "\n\r") {
			return errors.New(errors.ErrCodeInvalidManifest, "%s: artifact path %q cannot be encoded", d.ID, p)
		}
	}
	return nil
}

// EncodeString is like Encode but returns the text.
func EncodeString(deps []*Dependency) (string, error) {
	var sb strings.Builder
	if err := Encode(&sb, deps); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// EncodeGraph encodes the nodes of g in insertion order.
func EncodeGraph(w io.Writer, g *Graph) error {
	return Encode(w, g.Dependencies())
}

// Decode parses the text format. Every malformed line is reported to
// onMalformed (which may be nil); if any line is malformed the result is
// empty. Decoding still walks the remaining lines so every problem is
// reported.
func Decode(data []byte, onMalformed MalformedFunc) []*Dependency {
	if onMalformed == nil {
		onMalformed = func(int, string) {}
	}
	d := decoder{onMalformed: onMalformed, index: map[int]ID{rootIndex: Root}}
	return d.decode(string(data))
}

// DecodeGraph is like Decode but returns a Graph.
func DecodeGraph(data []byte, onMalformed MalformedFunc) *Graph {
	return GraphOf(Decode(data, onMalformed)...)
}

// DecodeStrict parses the text format and fails on the first malformed line
// with an ErrCodeInvalidManifest error wrapping *errors.LineError.
func DecodeStrict(data []byte) ([]*Dependency, error) {
	var first *errors.Error
	deps := Decode(data, func(n int, line string) {
		if first == nil {
			first = errors.Malformed(n, line)
		}
	})
	if first != nil {
		return nil, first
	}
	return deps, nil
}

type decoder struct {
	onMalformed MalformedFunc
	index       map[int]ID
	malformed   bool
}

type pendingHeader struct {
	dep    *Dependency
	lineNo int
	line   string
	tokens string
}

func (d *decoder) reject(n int, line string) {
	d.malformed = true
	d.onMalformed(n, line)
}

func (d *decoder) decode(text string) []*Dependency {
	var headers []*pendingHeader
	var current *pendingHeader

	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		if isIndented(line) {
			path := strings.TrimSpace(line)
			if current == nil || path == "" {
				d.reject(n, line)
				continue
			}
			current.dep.AddArtifactPath(path)
			continue
		}

		h, ok := d.parseHeader(n, line)
		if !ok {
			d.reject(n, line)
			current = nil
			continue
		}
		headers = append(headers, h)
		current = h
	}

	for _, h := range headers {
		if !d.stampDependees(h) {
			d.reject(h.lineNo, h.line)
		}
	}

	if d.malformed {
		return nil
	}
	deps := make([]*Dependency, len(headers))
	for i, h := range headers {
		deps[i] = h.dep
	}
	return deps
}

func (d *decoder) parseHeader(n int, line string) (*pendingHeader, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil || idx == rootIndex {
		return nil, false
	}
	id, err := ParseID(m[2])
	if err != nil {
		return nil, false
	}
	d.index[idx] = id
	return &pendingHeader{
		dep:    NewDependency(id, m[3]),
		lineNo: n,
		line:   line,
		tokens: m[4],
	}, true
}

func (d *decoder) stampDependees(h *pendingHeader) bool {
	for _, m := range dependeePattern.FindAllStringSubmatch(h.tokens, -1) {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return false
		}
		dependee, ok := d.index[idx]
		if !ok {
			return false
		}
		h.dep.SetRequestedVersion(dependee, m[2])
	}
	return true
}

func isIndented(line string) bool {
	return line[0] == ' ' || line[0] == '\t'
}
