package datastructure

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/routeannotator/pkg"
	"github.com/lintang-b-s/routeannotator/pkg/util"
)

func openCSV(filename string, fields int) (*os.File, *csv.Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, util.WrapErrorf(err, util.ErrIO, "cannot read file: %s", filename)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	r.TrimLeadingSpace = true
	r.ReuseRecord = true
	return f, r, nil
}

func csvRowError(orig error, r *csv.Reader, filename string, record []string) error {
	line, _ := r.FieldPos(0)
	return util.WrapErrorf(orig, util.ErrIO, "CSV parsing failed at %s:%d: %s", filename, line,
		strings.Join(record, ","))
}

func parseSpeed(s string) (uint32, error) {
	speed, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(speed), nil
}

// ReadSegmentCSV parses `from_node_id,to_node_id,speed` rows. blank lines are skipped.
func ReadSegmentCSV(filename string) (*SegmentTable, error) {
	f, r, err := openCSV(filename, 3)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table := NewSegmentTable()
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrIO, "CSV parsing failed at %s", filename)
		}

		from, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, csvRowError(err, r, filename, record)
		}
		to, err := strconv.ParseUint(strings.TrimSpace(record[1]), 10, 64)
		if err != nil {
			return nil, csvRowError(err, r, filename, record)
		}
		speed, err := parseSpeed(record[2])
		if err != nil {
			return nil, csvRowError(err, r, filename, record)
		}
		table.Add(from, to, speed)
	}
	return table, nil
}

// ReadWaySpeedCSV parses `way_id,name,unit,speed` rows. unit is mph, kph or empty (kph);
// mph speeds are converted to km/h.
func ReadWaySpeedCSV(filename string) (*WaySpeedTable, error) {
	f, r, err := openCSV(filename, 4)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table := NewWaySpeedTable()
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrIO, "CSV parsing failed at %s", filename)
		}

		wayID, err := strconv.ParseUint(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, csvRowError(err, r, filename, record)
		}
		speed, err := strconv.ParseUint(strings.TrimSpace(record[3]), 10, 32)
		if err != nil {
			return nil, csvRowError(err, r, filename, record)
		}

		switch unit := strings.TrimSpace(record[2]); unit {
		case "mph":
			speed = uint64(math.Round(float64(speed) * pkg.MPH_TO_KPH))
		case "kph", "":
		default:
			return nil, csvRowError(strconv.ErrSyntax, r, filename, record)
		}

		if speed >= uint64(pkg.INVALID_SPEED) {
			table.skipped++
			continue
		}
		table.Add(wayID, uint32(speed))
	}
	return table, nil
}
