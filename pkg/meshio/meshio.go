// Package meshio loads a mesh and a scalar field from the plain-text format
// the build command reads: a vertex count and scalar value per line,
// followed by an edge list. It is deliberately simple; production mesh
// formats (VTK, OBJ) are out of scope here.
package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/topomesh/mergetree/pkg/errors"
	"github.com/topomesh/mergetree/pkg/mesh"
	"github.com/topomesh/mergetree/pkg/scalars"
)

// Dataset bundles a loaded mesh with its scalar field, the pair a Builder
// needs to run.
type Dataset struct {
	Mesh  mesh.Mesh
	Field scalars.Field
}

// Load reads a dataset from path. The format is:
//
//	VERTICES <n>
//	<scalar value for vertex 0>
//	...
//	<scalar value for vertex n-1>
//	EDGES <m>
//	<u> <v>
//	...
//
// Blank lines and lines starting with '#' are skipped.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "failed to open mesh file", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a dataset from r using the same format as Load.
func Decode(r io.Reader) (*Dataset, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	nextLine := func() (string, bool) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true
		}
		return "", false
	}

	header, ok := nextLine()
	if !ok {
		return nil, apperrors.New(apperrors.CodeEmptyFile, "mesh file is empty")
	}
	n, err := parseCountLine(header, "VERTICES")
	if err != nil {
		return nil, err
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		line, ok := nextLine()
		if !ok {
			return nil, apperrors.Wrap(apperrors.CodeParseError,
				fmt.Sprintf("expected %d vertex values, got %d", n, i), nil)
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeParseError, "failed to parse vertex value", err)
		}
		values[i] = v
	}

	edgeHeader, ok := nextLine()
	if !ok {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "missing EDGES section", nil)
	}
	m, err := parseCountLine(edgeHeader, "EDGES")
	if err != nil {
		return nil, err
	}

	edges := make([][2]int, 0, m)
	for i := 0; i < m; i++ {
		line, ok := nextLine()
		if !ok {
			return nil, apperrors.Wrap(apperrors.CodeParseError,
				fmt.Sprintf("expected %d edges, got %d", m, i), nil)
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, apperrors.Wrap(apperrors.CodeParseError,
				fmt.Sprintf("malformed edge line %q", line), nil)
		}
		u, err1 := strconv.Atoi(fields[0])
		v, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return nil, apperrors.Wrap(apperrors.CodeParseError, "failed to parse edge endpoints", nil)
		}
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("edge (%d,%d) out of range for %d vertices", u, v, n), nil)
		}
		edges = append(edges, [2]int{u, v})
	}

	if err := sc.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeParseError, "failed to scan mesh file", err)
	}

	m0 := mesh.NewCSRMeshFromEdges(n, edges)
	field := scalars.NewArrayField(values, scalars.ByVertexID)

	return &Dataset{Mesh: m0, Field: field}, nil
}

func parseCountLine(line, keyword string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != keyword {
		return 0, apperrors.Wrap(apperrors.CodeParseError,
			fmt.Sprintf("expected %q header, got %q", keyword, line), nil)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return 0, apperrors.Wrap(apperrors.CodeParseError,
			fmt.Sprintf("invalid %s count %q", keyword, fields[1]), nil)
	}
	return n, nil
}
