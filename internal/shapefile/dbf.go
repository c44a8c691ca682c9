package shapefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/stringtable"
)

type dbfFieldType byte

const (
	dbfString  dbfFieldType = 'C'
	dbfNumeric dbfFieldType = 'N'
	dbfFloat   dbfFieldType = 'F'
)

type dbfField struct {
	name     string // ≤ 11 chars, per spec §4.6
	kind     dbfFieldType
	length   int
	decimals int
	offset   int // byte offset within a record, after the 1-byte delete flag
}

type dbfFile struct {
	fields      []dbfField
	recordCount int
	recordBytes []byte // all records concatenated, each recordLength bytes
	recordLen   int
	headerLen   int
}

func openDBF(path string) (*dbfFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 32 {
		return nil, fmt.Errorf("dbf file too short")
	}

	recordCount := int(binary.LittleEndian.Uint32(data[4:8]))
	headerLen := int(binary.LittleEndian.Uint16(data[8:10]))
	recordLen := int(binary.LittleEndian.Uint16(data[10:12]))

	f := &dbfFile{recordCount: recordCount, recordLen: recordLen, headerLen: headerLen}

	offset := 32
	fieldOffset := 1 // after the per-record delete flag byte
	for offset+32 <= len(data) && data[offset] != 0x0D {
		desc := data[offset : offset+32]
		name := strings.TrimRight(string(bytes.TrimRight(desc[0:11], "\x00")), " ")
		kind := dbfFieldType(desc[11])
		length := int(desc[16])
		decimals := int(desc[17])

		f.fields = append(f.fields, dbfField{
			name:     name,
			kind:     kind,
			length:   length,
			decimals: decimals,
			offset:   fieldOffset,
		})
		fieldOffset += length
		offset += 32
	}

	if headerLen <= len(data) {
		f.recordBytes = data[headerLen:]
	}
	return f, nil
}

// parseTags builds model.Tags for record k, skipping NULL (blank)
// attribute values and any field type other than String/Integer/Double,
// mirroring the original ShapeParser::parseTags switch.
func (f *dbfFile) parseTags(table *stringtable.Table, k int) (model.Tags, error) {
	if k < 0 || k >= f.recordCount {
		return nil, fmt.Errorf("record %d out of range", k)
	}
	recStart := k * f.recordLen
	if recStart+f.recordLen > len(f.recordBytes) {
		return nil, fmt.Errorf("truncated dbf record %d", k)
	}
	record := f.recordBytes[recStart : recStart+f.recordLen]

	raw := make(map[string]string)
	var order []string
	for _, field := range f.fields {
		if field.offset+field.length > len(record) {
			continue
		}
		valueBytes := record[field.offset : field.offset+field.length]
		text := strings.TrimSpace(string(valueBytes))
		if text == "" {
			continue // NULL attribute, skip per spec
		}

		var value string
		switch field.kind {
		case dbfString:
			value = text
		case dbfNumeric:
			if field.decimals > 0 {
				f, err := strconv.ParseFloat(text, 64)
				if err != nil {
					continue
				}
				value = strconv.FormatFloat(f, 'f', -1, 64)
			} else {
				n, err := strconv.ParseInt(text, 10, 64)
				if err != nil {
					continue
				}
				value = strconv.FormatInt(n, 10)
			}
		case dbfFloat:
			fl, err := strconv.ParseFloat(text, 64)
			if err != nil {
				continue
			}
			value = strconv.FormatFloat(fl, 'f', -1, 64)
		default:
			continue // other field types ignored, per spec §4.6
		}

		name := field.name
		if len(name) > 11 {
			name = name[:11]
		}
		raw[name] = value
		order = append(order, name)
	}

	return model.NewTags(table, raw, order), nil
}
