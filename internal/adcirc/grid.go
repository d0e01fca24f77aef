// Package adcirc reads and writes ADCIRC ASCII mesh (fort.14) and scalar
// output (fort.63) files.
package adcirc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

const (
	sectionGridHeader = "grid header"
	sectionNodes      = "nodes"
	sectionElements   = "elements"
	sectionElevation  = "elevation boundaries"
	sectionNormalFlow = "normal flow boundaries"
)

// ReadGrid opens and parses a fort.14 mesh file. A nil logger discards
// progress messages.
func ReadGrid(path string, logger *slog.Logger) (*domain.GridRecord, error) {
	logger = orDiscard(logger)
	logger.Info("reading grid", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.FormatError{Path: path, Err: err}
	}
	defer f.Close()

	return parseGrid(f, path, logger)
}

// ParseGrid parses a fort.14 mesh from r.
func ParseGrid(r io.Reader, logger *slog.Logger) (*domain.GridRecord, error) {
	return parseGrid(r, "", orDiscard(logger))
}

func parseGrid(r io.Reader, path string, logger *slog.Logger) (*domain.GridRecord, error) {
	lr := newLineReader(r, path)

	desc, err := lr.next(sectionGridHeader)
	if err != nil {
		return nil, err
	}
	desc = strings.TrimRight(desc, " \t\r")

	f, err := lr.fields(sectionGridHeader, 2)
	if err != nil {
		return nil, err
	}
	ne, err := lr.atoi(sectionGridHeader, f[0])
	if err != nil {
		return nil, err
	}
	np, err := lr.atoi(sectionGridHeader, f[1])
	if err != nil {
		return nil, err
	}
	if ne <= 0 || np <= 0 {
		return nil, lr.parseErr(sectionGridHeader, "", fmt.Errorf("element and node counts must be positive, got NE=%d NP=%d", ne, np))
	}
	logger.Info("grid description", "description", desc)
	logger.Info("grid size", "elements", ne, "nodes", np)

	g := &domain.GridRecord{
		Description:  desc,
		NodeCount:    np,
		ElementCount: ne,
	}

	logger.Info("reading grid nodes")
	if g.Nodes, err = readNodes(lr, np); err != nil {
		return nil, err
	}

	logger.Info("reading grid elements")
	if g.Elements, err = readElements(lr, ne); err != nil {
		return nil, err
	}

	logger.Info("reading elevation-specified boundaries")
	if g.ElevationNodeTotal, g.ElevationBoundaries, err = readElevationBoundaries(lr); err != nil {
		return nil, err
	}

	logger.Info("reading normal flow-specified boundaries")
	if g.NormalFlowNodeTotal, g.NormalFlowBoundaries, err = readNormalFlowBoundaries(lr); err != nil {
		return nil, err
	}

	logger.Info("grid read",
		"nodes", np,
		"elements", ne,
		"elevation_segments", len(g.ElevationBoundaries),
		"normal_flow_segments", len(g.NormalFlowBoundaries),
	)
	return g, nil
}

func readNodes(lr *lineReader, np int) ([]domain.Node, error) {
	nodes := make([]domain.Node, 0, capHint(np))
	for k := range np {
		f, err := lr.fields(sectionNodes, 4)
		if err != nil {
			return nil, err
		}
		if err := lr.expectID(sectionNodes, f[0], k+1); err != nil {
			return nil, err
		}
		var xyz [3]float64
		for i := range xyz {
			if xyz[i], err = lr.atof(sectionNodes, f[i+1]); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, domain.Node{Lon: xyz[0], Lat: xyz[1], Depth: xyz[2]})
	}
	return nodes, nil
}

// readElements reads triangle connectivity. The vertex-count column is not
// interpreted; node ids are not checked against NP.
func readElements(lr *lineReader, ne int) ([]domain.Element, error) {
	elements := make([]domain.Element, 0, capHint(ne))
	for k := range ne {
		f, err := lr.fields(sectionElements, 5)
		if err != nil {
			return nil, err
		}
		if err := lr.expectID(sectionElements, f[0], k+1); err != nil {
			return nil, err
		}
		var el domain.Element
		for i := range el {
			if el[i], err = lr.atoi(sectionElements, f[i+2]); err != nil {
				return nil, err
			}
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func readElevationBoundaries(lr *lineReader) (int, []domain.ElevationBoundary, error) {
	nope, err := lr.count(sectionElevation)
	if err != nil {
		return 0, nil, err
	}
	neta, err := lr.count(sectionElevation)
	if err != nil {
		return 0, nil, err
	}

	segments := make([]domain.ElevationBoundary, 0, capHint(nope))
	for range nope {
		f, err := lr.fields(sectionElevation, 1)
		if err != nil {
			return 0, nil, err
		}
		nvdll, err := lr.atoi(sectionElevation, f[0])
		if err != nil {
			return 0, nil, err
		}
		if nvdll < 0 {
			return 0, nil, lr.parseErr(sectionElevation, f[0], errors.New("negative segment length"))
		}
		var seg domain.ElevationBoundary
		if len(f) > 1 {
			// IBTYPEE is optional; commentary may follow the count instead.
			if t, err := lr.atoi(sectionElevation, f[1]); err == nil {
				seg.Type = domain.ElevationBoundaryType(t)
			}
		}

		seg.Nodes = make([]int, 0, capHint(nvdll))
		for range nvdll {
			nf, err := lr.fields(sectionElevation, 1)
			if err != nil {
				return 0, nil, err
			}
			id, err := lr.atoi(sectionElevation, nf[0])
			if err != nil {
				return 0, nil, err
			}
			seg.Nodes = append(seg.Nodes, id)
		}
		segments = append(segments, seg)
	}
	return neta, segments, nil
}

func readNormalFlowBoundaries(lr *lineReader) (int, []domain.NormalFlowBoundary, error) {
	nbou, err := lr.count(sectionNormalFlow)
	if err != nil {
		return 0, nil, err
	}
	nvel, err := lr.count(sectionNormalFlow)
	if err != nil {
		return 0, nil, err
	}

	segments := make([]domain.NormalFlowBoundary, 0, capHint(nbou))
	for range nbou {
		f, err := lr.fields(sectionNormalFlow, 2)
		if err != nil {
			return 0, nil, err
		}
		nvell, err := lr.atoi(sectionNormalFlow, f[0])
		if err != nil {
			return 0, nil, err
		}
		if nvell < 0 {
			return 0, nil, lr.parseErr(sectionNormalFlow, f[0], errors.New("negative segment length"))
		}
		code, err := lr.atoi(sectionNormalFlow, f[1])
		if err != nil {
			return 0, nil, err
		}
		ibtype := domain.BoundaryType(code)
		layout, ok := ibtype.Layout()
		if !ok {
			return 0, nil, lr.parseErr(sectionNormalFlow, f[1], domain.ErrUnsupportedBoundaryType)
		}

		seg := domain.NormalFlowBoundary{
			Type:  ibtype,
			Nodes: make([]domain.NormalFlowNode, 0, capHint(nvell)),
		}
		for range nvell {
			n, err := readNormalFlowNode(lr, layout)
			if err != nil {
				return 0, nil, err
			}
			seg.Nodes = append(seg.Nodes, n)
		}
		segments = append(segments, seg)
	}
	return nvel, segments, nil
}

// readNormalFlowNode reads one node line; the layout fixes which columns are
// present and which optional parts get populated.
func readNormalFlowNode(lr *lineReader, layout domain.BoundaryLayout) (domain.NormalFlowNode, error) {
	var n domain.NormalFlowNode
	f, err := lr.fields(sectionNormalFlow, layout.Columns())
	if err != nil {
		return n, err
	}
	if n.NodeID, err = lr.atoi(sectionNormalFlow, f[0]); err != nil {
		return n, err
	}

	floats := func(toks []string) ([]float64, error) {
		out := make([]float64, len(toks))
		for i, tok := range toks {
			v, err := lr.atof(sectionNormalFlow, tok)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	switch layout {
	case domain.LayoutNodeOnly:
	case domain.LayoutExternalBarrier:
		v, err := floats(f[1:3])
		if err != nil {
			return n, err
		}
		n.External = &domain.ExternalBarrier{Height: v[0], CFSP: v[1]}
	case domain.LayoutInternalBarrier, domain.LayoutInternalBarrierPipe:
		back, err := lr.atoi(sectionNormalFlow, f[1])
		if err != nil {
			return n, err
		}
		v, err := floats(f[2:5])
		if err != nil {
			return n, err
		}
		n.Internal = &domain.InternalBarrier{BackFaceNodeID: back, Height: v[0], CFSB: v[1], CFSP: v[2]}
		if layout == domain.LayoutInternalBarrierPipe {
			p, err := floats(f[5:8])
			if err != nil {
				return n, err
			}
			n.Pipe = &domain.CrossBarrierPipe{Height: p[0], FrictionFactor: p[1], Diameter: p[2]}
		}
	}
	return n, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
