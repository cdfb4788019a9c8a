package osmparser

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/routeannotator/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

type extractFormat int

const (
	formatXML extractFormat = iota
	formatBzip2XML
	formatPBF
)

func (f extractFormat) String() string {
	switch f {
	case formatXML:
		return "osm xml"
	case formatBzip2XML:
		return "bzip2 osm xml"
	default:
		return "osm pbf"
	}
}

var bzip2Magic = []byte("BZh")

// detectFormat picks the decoder from the file extension and falls back to
// looking at the first bytes of the file.
func detectFormat(path string, head []byte) extractFormat {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".pbf"):
		return formatPBF
	case strings.HasSuffix(name, ".bz2"):
		return formatBzip2XML
	case strings.HasSuffix(name, ".osm"), strings.HasSuffix(name, ".xml"):
		return formatXML
	}

	if bytes.HasPrefix(head, bzip2Magic) {
		return formatBzip2XML
	}
	trimmed := bytes.TrimLeft(head, "\xef\xbb\xbf \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return formatXML
	}
	return formatPBF
}

type extractScanner struct {
	osm.Scanner
	closers []io.Closer
}

func (s *extractScanner) Close() error {
	err := s.Scanner.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

type scanOptions struct {
	skipNodes bool
	skipWays  bool
	procs     int
}

// openExtract opens an extract file and returns a scanner for it. the pbf scanner skips
// object kinds the caller is not interested in; the xml scanner yields everything.
func openExtract(ctx context.Context, path string, opts scanOptions) (*extractScanner, extractFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, util.WrapErrorf(err, util.ErrIO, "cannot read file: %s", path)
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		f.Close()
		return nil, 0, util.WrapErrorf(errors.Wrapf(err, "peek %s", path), util.ErrIO,
			"cannot read file: %s", path)
	}

	format := detectFormat(path, head)
	switch format {
	case formatPBF:
		scanner := osmpbf.New(ctx, br, opts.procs)
		scanner.SkipNodes = opts.skipNodes
		scanner.SkipWays = opts.skipWays
		scanner.SkipRelations = true
		return &extractScanner{Scanner: scanner, closers: []io.Closer{f}}, format, nil
	case formatBzip2XML:
		bz, err := bzip2.NewReader(br, nil)
		if err != nil {
			f.Close()
			return nil, 0, util.WrapErrorf(errors.Wrapf(err, "bzip2 %s", path), util.ErrIO,
				"cannot read file: %s", path)
		}
		return &extractScanner{Scanner: osmxml.New(ctx, bz), closers: []io.Closer{f, bz}}, format, nil
	default:
		return &extractScanner{Scanner: osmxml.New(ctx, br), closers: []io.Closer{f}}, format, nil
	}
}
