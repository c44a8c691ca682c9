package shapefile

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
)

func putFloat64(buf []byte, off int, v float64) {
	binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
}

// writeSHP assembles a minimal valid .shp file containing the given
// records (shape type + point content only, enough for this package's
// decoder).
func writeSHP(t *testing.T, path string, shapeType int32, records [][]byte) {
	t.Helper()
	var buf []byte
	header := make([]byte, 100)
	binary.BigEndian.PutUint32(header[0:4], 9994)
	binary.LittleEndian.PutUint32(header[32:36], uint32(shapeType))
	buf = append(buf, header...)

	for i, content := range records {
		recHeader := make([]byte, 8)
		binary.BigEndian.PutUint32(recHeader[0:4], uint32(i+1))
		binary.BigEndian.PutUint32(recHeader[4:8], uint32(len(content)/2))
		buf = append(buf, recHeader...)
		buf = append(buf, content...)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func pointRecord(shapeType int32, x, y float64) []byte {
	content := make([]byte, 4+16)
	binary.LittleEndian.PutUint32(content[0:4], uint32(shapeType))
	putFloat64(content, 4, x)
	putFloat64(content, 12, y)
	return content
}

func polylineRecord(shapeType int32, parts [][2]float64, numParts int32) []byte {
	numPoints := int32(0)
	for range parts {
		numPoints++
	}
	content := make([]byte, 4+32+4+4+4*numParts+16*numPoints)
	binary.LittleEndian.PutUint32(content[0:4], uint32(shapeType))
	binary.LittleEndian.PutUint32(content[36:40], uint32(numParts))
	binary.LittleEndian.PutUint32(content[40:44], uint32(numPoints))
	cursor := 44
	// single part starting at 0 for each synthetic "extra part" this test needs
	starts := make([]int32, numParts)
	if numParts == 1 {
		starts[0] = 0
	} else {
		for i := range starts {
			starts[i] = int32(i)
		}
	}
	for _, s := range starts {
		binary.LittleEndian.PutUint32(content[cursor:cursor+4], uint32(s))
		cursor += 4
	}
	for _, p := range parts {
		putFloat64(content, cursor, p[0])
		putFloat64(content, cursor+8, p[1])
		cursor += 16
	}
	return content
}

func writeDBF(t *testing.T, path string, fields []dbfField, rows [][]string) {
	t.Helper()
	recordLen := 1
	for _, f := range fields {
		recordLen += f.length
	}

	header := make([]byte, 32)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(rows)))
	headerLen := 32 + 32*len(fields) + 1
	binary.LittleEndian.PutUint16(header[8:10], uint16(headerLen))
	binary.LittleEndian.PutUint16(header[10:12], uint16(recordLen))

	var buf []byte
	buf = append(buf, header...)
	for _, f := range fields {
		desc := make([]byte, 32)
		copy(desc[0:11], f.name)
		desc[11] = byte(f.kind)
		desc[16] = byte(f.length)
		desc[17] = byte(f.decimals)
		buf = append(buf, desc...)
	}
	buf = append(buf, 0x0D)

	for _, row := range rows {
		rec := make([]byte, recordLen)
		rec[0] = ' '
		offset := 1
		for i, f := range fields {
			val := row[i]
			for j := 0; j < f.length; j++ {
				if j < len(val) {
					rec[offset+j] = val[j]
				} else {
					rec[offset+j] = ' '
				}
			}
			offset += f.length
		}
		buf = append(buf, rec...)
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

type captureVisitor struct {
	nodes     []quadkey.GeoCoordinate
	ways      [][]quadkey.GeoCoordinate
	closed    []bool
	relations [][]PolygonMember
	tags      []model.Tags
}

func (c *captureVisitor) VisitNode(coord quadkey.GeoCoordinate, tags model.Tags) error {
	c.nodes = append(c.nodes, coord)
	c.tags = append(c.tags, tags)
	return nil
}

func (c *captureVisitor) VisitWay(coords []quadkey.GeoCoordinate, tags model.Tags, isClosed bool) error {
	c.ways = append(c.ways, coords)
	c.closed = append(c.closed, isClosed)
	c.tags = append(c.tags, tags)
	return nil
}

func (c *captureVisitor) VisitRelation(members []PolygonMember, tags model.Tags) error {
	c.relations = append(c.relations, members)
	c.tags = append(c.tags, tags)
	return nil
}

func TestParsePoint(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "points")
	writeSHP(t, base+".shp", shpPoint, [][]byte{pointRecord(shpPoint, 10, 20)})
	writeDBF(t, base+".dbf", []dbfField{{name: "name", kind: dbfString, length: 10}}, [][]string{{"hello"}})

	table := stringtable.New()
	var v captureVisitor
	if err := Parse(base, table, &v); err != nil {
		t.Fatal(err)
	}
	if len(v.nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(v.nodes))
	}
	if v.nodes[0].Lat != 20 || v.nodes[0].Lon != 10 {
		t.Fatalf("expected (lat=20,lon=10), got %+v", v.nodes[0])
	}
	if val, ok := v.tags[0].Get(table, "name"); !ok || val != "hello" {
		t.Fatalf("expected name=hello tag, got %q ok=%v", val, ok)
	}
}

func TestParseArcMultiPartSkipped(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "arcs")
	multiPart := polylineRecord(shpPolyLine, [][2]float64{{0, 0}, {1, 1}, {2, 2}}, 2)
	writeSHP(t, base+".shp", shpPolyLine, [][]byte{multiPart})
	writeDBF(t, base+".dbf", []dbfField{{name: "id", kind: dbfNumeric, length: 4}}, [][]string{{"1"}})

	table := stringtable.New()
	var v captureVisitor
	if err := Parse(base, table, &v); err != nil {
		t.Fatal(err)
	}
	if len(v.ways) != 0 {
		t.Fatalf("expected multi-part arc to be skipped, got %d ways", len(v.ways))
	}
}

func TestParseArcClosedDetection(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "closedarc")
	singlePart := polylineRecord(shpPolyLine, [][2]float64{{0, 0}, {1, 1}, {0, 0}}, 1)
	writeSHP(t, base+".shp", shpPolyLine, [][]byte{singlePart})
	writeDBF(t, base+".dbf", []dbfField{{name: "id", kind: dbfNumeric, length: 4}}, [][]string{{"1"}})

	table := stringtable.New()
	var v captureVisitor
	if err := Parse(base, table, &v); err != nil {
		t.Fatal(err)
	}
	if len(v.ways) != 1 {
		t.Fatalf("expected 1 way, got %d", len(v.ways))
	}
	if !v.closed[0] {
		t.Fatal("expected isClosed=true when first and last vertex coincide")
	}
}

func TestParseDbfCountMismatch(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "mismatch")
	writeSHP(t, base+".shp", shpPoint, [][]byte{pointRecord(shpPoint, 1, 2), pointRecord(shpPoint, 3, 4)})
	writeDBF(t, base+".dbf", []dbfField{{name: "id", kind: dbfNumeric, length: 4}}, [][]string{{"1"}})

	table := stringtable.New()
	var v captureVisitor
	err := Parse(base, table, &v)
	if err == nil {
		t.Fatal("expected DbfCountMismatch error")
	}
}
