package shapefile

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/geoquad/tilebuilder/internal/logger"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
)

// Shape type codes from the ESRI shapefile spec. Z/M variants carry the
// same X/Y layout with extra trailing data this reader never needs.
const (
	shpNull        = 0
	shpPoint       = 1
	shpPolyLine    = 3
	shpPolygon     = 5
	shpMultiPoint  = 8
	shpPointZ      = 11
	shpPolyLineZ   = 13
	shpPolygonZ    = 15
	shpMultiPointZ = 18
	shpPointM      = 21
	shpPolyLineM   = 23
	shpPolygonM    = 25
	shpMultiPointM = 28
	shpMultiPatch  = 31

	ringPartType = 1 // SHPP_RING
)

// shpRecord is one decoded shape, keeping enough of the raw layout
// (parts/partTypes) for the Polygon dispatch to rebuild per-ring members.
type shpRecord struct {
	shapeType int32
	points    []quadkey.GeoCoordinate // x=lon, y=lat order in the file; stored as GeoCoordinate{Lat,Lon}
	parts     []int32                 // start vertex index of each part
	partTypes []int32                 // SHPP_RING or not, one per part (polygon only)
}

type shpFile struct {
	shapeType int32
	records   []shpRecord
}

func openSHP(path string) (*shpFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 100 {
		return nil, fmt.Errorf("shp file too short: %d bytes", len(data))
	}
	fileCode := binary.BigEndian.Uint32(data[0:4])
	if fileCode != 9994 {
		return nil, fmt.Errorf("bad shp file code %d", fileCode)
	}
	shapeType := int32(binary.LittleEndian.Uint32(data[32:36]))

	f := &shpFile{shapeType: shapeType}
	offset := 100
	for offset+8 <= len(data) {
		// Record header: big-endian record number, big-endian content
		// length in 16-bit words.
		contentWords := binary.BigEndian.Uint32(data[offset+4 : offset+8])
		contentBytes := int(contentWords) * 2
		start := offset + 8
		end := start + contentBytes
		if end > len(data) {
			return nil, fmt.Errorf("truncated shape record at offset %d", offset)
		}
		rec, err := decodeRecord(data[start:end])
		if err != nil {
			return nil, err
		}
		f.records = append(f.records, rec)
		offset = end
	}
	return f, nil
}

func decodeRecord(content []byte) (shpRecord, error) {
	if len(content) < 4 {
		return shpRecord{}, fmt.Errorf("empty shape record")
	}
	shapeType := int32(binary.LittleEndian.Uint32(content[0:4]))
	rec := shpRecord{shapeType: shapeType}
	if shapeType == shpNull {
		return rec, nil
	}

	body := content[4:]
	switch shapeType {
	case shpPoint, shpPointZ, shpPointM:
		if len(body) < 16 {
			return rec, fmt.Errorf("truncated point record")
		}
		x := math.Float64frombits(binary.LittleEndian.Uint64(body[0:8]))
		y := math.Float64frombits(binary.LittleEndian.Uint64(body[8:16]))
		rec.points = []quadkey.GeoCoordinate{{Lat: y, Lon: x}}

	case shpPolyLine, shpPolyLineZ, shpPolyLineM,
		shpPolygon, shpPolygonZ, shpPolygonM:
		if len(body) < 32+8 {
			return rec, fmt.Errorf("truncated polyline/polygon record")
		}
		numParts := int(int32(binary.LittleEndian.Uint32(body[32:36])))
		numPoints := int(int32(binary.LittleEndian.Uint32(body[36:40])))
		cursor := 40
		rec.parts = make([]int32, numParts)
		for i := 0; i < numParts; i++ {
			rec.parts[i] = int32(binary.LittleEndian.Uint32(body[cursor : cursor+4]))
			cursor += 4
		}
		if shapeType == shpPolygon || shapeType == shpPolygonZ || shapeType == shpPolygonM {
			// Plain shapefiles carry no per-part type array (that's a
			// SHP extension some writers add); default every part to a
			// ring, the common case, and let winding order (model.IsClockwise)
			// be the real outer/hole signal downstream.
			rec.partTypes = make([]int32, numParts)
			for i := range rec.partTypes {
				rec.partTypes[i] = ringPartType
			}
		}
		rec.points = make([]quadkey.GeoCoordinate, numPoints)
		for i := 0; i < numPoints; i++ {
			if cursor+16 > len(body) {
				return rec, fmt.Errorf("truncated vertex list")
			}
			x := math.Float64frombits(binary.LittleEndian.Uint64(body[cursor : cursor+8]))
			y := math.Float64frombits(binary.LittleEndian.Uint64(body[cursor+8 : cursor+16]))
			rec.points[i] = quadkey.GeoCoordinate{Lat: y, Lon: x}
			cursor += 16
		}

	default:
		// MultiPoint*, MultiPatch, or anything unrecognized: leave
		// rec.points empty, dispatchShape will warn and skip.
	}
	return rec, nil
}

// dispatchShape implements the type-switch from spec §4.6 / the original
// ShapeParser::visitShape.
func dispatchShape(rec shpRecord, tags model.Tags, visitor Visitor) error {
	switch rec.shapeType {
	case shpNull:
		return nil

	case shpPoint, shpPointZ, shpPointM:
		return visitor.VisitNode(rec.points[0], tags)

	case shpPolyLine, shpPolyLineZ, shpPolyLineM:
		if len(rec.parts) > 1 {
			// warn and drop, per spec §4.6 / Testable Property 8
			logger.Get().Warn(fmt.Sprintf("shapefile: dropping arc with %d parts", len(rec.parts)))
			return nil
		}
		if len(rec.points) == 0 {
			return nil
		}
		isClosed := rec.points[0] == rec.points[len(rec.points)-1]
		return visitor.VisitWay(rec.points, tags, isClosed)

	case shpPolygon, shpPolygonZ, shpPolygonM:
		members := make([]PolygonMember, 0, len(rec.parts))
		for i, start := range rec.parts {
			end := len(rec.points)
			if i < len(rec.parts)-1 {
				end = int(rec.parts[i+1])
			}
			if int(start) > end || end > len(rec.points) {
				continue
			}
			coords := make([]quadkey.GeoCoordinate, end-int(start))
			copy(coords, rec.points[start:end])
			members = append(members, PolygonMember{
				IsRing:      rec.partTypes[i] == ringPartType,
				Coordinates: coords,
			})
		}
		return visitor.VisitRelation(members, tags)

	case shpMultiPoint, shpMultiPointZ, shpMultiPointM, shpMultiPatch:
		logger.Get().Warn(fmt.Sprintf("shapefile: skipping unsupported shape type %d", rec.shapeType))
		return nil

	default:
		logger.Get().Warn(fmt.Sprintf("shapefile: skipping unknown shape type %d", rec.shapeType))
		return nil
	}
}
