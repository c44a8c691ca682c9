package geostore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/tberrors"
)

// Persistent is the Postgres-backed ElementStore variant from spec §4.1,
// grounded on internal/middle/tables.go's MiddleStore: one wide table
// keyed by quadkey string, gob-encoded payload column, bulk loaded with
// pgx.CopyFrom exactly the way MiddleStore bulk-loads planet_osm_nodes.
type Persistent struct {
	pool   *pgxpool.Pool
	schema string
	table  string
}

// NewPersistent wraps an existing pgx pool. schema is created (but not
// the database) by EnsureSchema.
func NewPersistent(pool *pgxpool.Pool, schema string) *Persistent {
	return &Persistent{pool: pool, schema: schema, table: "tile_elements"}
}

func (p *Persistent) fullName() string {
	return fmt.Sprintf("%s.%s", p.schema, p.table)
}

// EnsureSchema creates the schema, table and quadkey index if missing.
func (p *Persistent) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", p.schema)); err != nil {
		return tberrors.Wrap(tberrors.StoreIOError, "create schema", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			tile_x     INTEGER NOT NULL,
			tile_y     INTEGER NOT NULL,
			lod        INTEGER NOT NULL,
			quadkey    TEXT NOT NULL,
			element_id BIGINT NOT NULL,
			payload    BYTEA NOT NULL
		)`, p.fullName())
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return tberrors.Wrap(tberrors.StoreIOError, "create table", err)
	}

	idx := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s_quadkey_idx ON %s (quadkey)",
		p.table, p.fullName())
	if _, err := p.pool.Exec(ctx, idx); err != nil {
		return tberrors.Wrap(tberrors.StoreIOError, "create index", err)
	}
	return nil
}

// Add indexes a single element under every quadkey in lodRange, via one
// pipelined batch of INSERTs. For bulk ingestion (thousands of elements
// from a shapefile or OSM XML source) prefer AddBatch, which streams
// through pgx.CopyFrom instead.
func (p *Persistent) Add(ctx context.Context, element model.Element, lodRange quadkey.LodRange) error {
	if !lodRange.IsValid() {
		return nil
	}
	box := model.BoundingBox(element)
	if !box.IsValid() {
		return nil
	}
	payload, err := encodeElement(element)
	if err != nil {
		return tberrors.Wrap(tberrors.StoreCorrupt, "encode element", err)
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (tile_x, tile_y, lod, quadkey, element_id, payload) VALUES ($1,$2,$3,$4,$5,$6)",
		p.fullName())

	batch := &pgx.Batch{}
	for lod := lodRange.Min; lod <= lodRange.Max; lod++ {
		for _, qk := range quadkey.BoundingBoxToQuadKeys(box, lod) {
			batch.Queue(insert, qk.TileX, qk.TileY, qk.LevelOfDetail, qk.Key(), element.ElementID(), payload)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return tberrors.Wrap(tberrors.StoreIOError, "insert element row", err)
		}
	}
	return nil
}

// AddBatch bulk-loads many elements at once via pgx.CopyFrom, the same
// channel-backed rowSource idiom the teacher uses for planet_osm_nodes.
func (p *Persistent) AddBatch(ctx context.Context, elements []model.Element, lodRange quadkey.LodRange) (int64, error) {
	if !lodRange.IsValid() {
		return 0, nil
	}

	rowChan := make(chan []interface{}, 10000)
	go func() {
		defer close(rowChan)
		for _, el := range elements {
			box := model.BoundingBox(el)
			if !box.IsValid() {
				continue
			}
			payload, err := encodeElement(el)
			if err != nil {
				continue
			}
			for lod := lodRange.Min; lod <= lodRange.Max; lod++ {
				for _, qk := range quadkey.BoundingBoxToQuadKeys(box, lod) {
					row := []interface{}{qk.TileX, qk.TileY, qk.LevelOfDetail, qk.Key(), el.ElementID(), payload}
					select {
					case rowChan <- row:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	count, err := p.pool.CopyFrom(
		ctx,
		pgx.Identifier{p.schema, p.table},
		[]string{"tile_x", "tile_y", "lod", "quadkey", "element_id", "payload"},
		&rowSource{rows: rowChan},
	)
	if err != nil {
		return 0, tberrors.Wrap(tberrors.StoreIOError, "copy elements", err)
	}
	return count, nil
}

// Search returns every element indexed under qk.
func (p *Persistent) Search(ctx context.Context, qk quadkey.QuadKey) ([]model.Element, error) {
	rows, err := p.pool.Query(ctx,
		fmt.Sprintf("SELECT payload FROM %s WHERE quadkey = $1", p.fullName()),
		qk.Key())
	if err != nil {
		return nil, tberrors.Wrap(tberrors.StoreIOError, "search", err)
	}
	defer rows.Close()

	var out []model.Element
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, tberrors.Wrap(tberrors.StoreCorrupt, "scan payload", err)
		}
		element, err := decodeElement(payload)
		if err != nil {
			return nil, tberrors.Wrap(tberrors.StoreCorrupt, "decode element", err)
		}
		out = append(out, element)
	}
	return out, rows.Err()
}

// HasData reports whether any row is indexed under qk.
func (p *Persistent) HasData(ctx context.Context, qk quadkey.QuadKey) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE quadkey = $1)", p.fullName()),
		qk.Key()).Scan(&exists)
	if err != nil {
		return false, tberrors.Wrap(tberrors.StoreIOError, "has_data", err)
	}
	return exists, nil
}
