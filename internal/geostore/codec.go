package geostore

import (
	"bytes"
	"encoding/gob"

	"github.com/geoquad/tilebuilder/internal/model"
)

func init() {
	gob.Register(&model.Node{})
	gob.Register(&model.Way{})
	gob.Register(&model.Area{})
	gob.Register(&model.Relation{})
}

// encodeElement gob-encodes element for storage in PersistentElementStore's
// payload column. Elements are a closed, gob-registered sum type (see
// model.Element), so round-tripping through an interface value is safe.
func encodeElement(element model.Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&element); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeElement(payload []byte) (model.Element, error) {
	var element model.Element
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&element); err != nil {
		return nil, err
	}
	return element, nil
}
