package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// BBox is a geographic bounding box parsed from the CLI flags; the CLI
// converts it to a quadkey.BoundingBox before calling the Application's
// AddToInMemoryStoreBBox.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
	IsSet                          bool
}

// Contains reports whether a point lies inside the box; an unset box
// contains everything.
func (b *BBox) Contains(lat, lon float64) bool {
	if !b.IsSet {
		return true
	}
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// ParseBBox parses "minlon,minlat,maxlon,maxlat".
func ParseBBox(s string) (*BBox, error) {
	if s == "" {
		return &BBox{IsSet: false}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox must have 4 values: minlon,minlat,maxlon,maxlat")
	}

	var coords [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bbox coordinate %q: %w", p, err)
		}
		coords[i] = v
	}

	bbox := &BBox{MinLon: coords[0], MinLat: coords[1], MaxLon: coords[2], MaxLat: coords[3], IsSet: true}
	if bbox.MinLon > bbox.MaxLon {
		return nil, fmt.Errorf("minlon (%f) must be <= maxlon (%f)", bbox.MinLon, bbox.MaxLon)
	}
	if bbox.MinLat > bbox.MaxLat {
		return nil, fmt.Errorf("minlat (%f) must be <= maxlat (%f)", bbox.MinLat, bbox.MaxLat)
	}
	return bbox, nil
}

// Config holds everything the root Application needs to construct its
// stores, builders, and ambient services. Fields are grouped the way the
// teacher's Config groups its import-pipeline settings.
type Config struct {
	// Filesystem paths (spec §6 new() parameters).
	StringTablePath string
	DataDir         string
	ElevationDir    string

	// Database settings, for the persistent GeoStore.
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSchema   string

	// Elevation provider selection (spec §4.2).
	SrtmElevationLodStart int

	// Processing settings.
	BatchSize int

	// Logging and metrics.
	Verbose         bool
	LogFile         string
	MetricsInterval time.Duration
}

// DefaultConfig returns a configuration with sensible defaults, mirroring
// the teacher's DefaultConfig shape.
func DefaultConfig() *Config {
	return &Config{
		StringTablePath:       "./tiles/strings.tbl",
		DataDir:               "./tiles/data",
		ElevationDir:          "./tiles/srtm",
		DBHost:                "localhost",
		DBPort:                5432,
		DBName:                "tilebuilder",
		DBUser:                "postgres",
		DBSchema:              "public",
		SrtmElevationLodStart: 42,
		BatchSize:             1000,
		LogFile:               "",
		MetricsInterval:       30 * time.Second,
	}
}

// ConnectionString returns a PostgreSQL connection string for pgxpool.
func (c *Config) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBName, c.DBUser,
	)
	if c.DBPassword != "" {
		connStr += fmt.Sprintf(" password=%s", c.DBPassword)
	}
	return connStr
}

// Validate checks that the configuration is usable to construct an
// Application.
func (c *Config) Validate() error {
	if c.StringTablePath == "" {
		return fmt.Errorf("string table path is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1")
	}
	return nil
}

// LoadDotEnv loads .env-style overrides from path via godotenv, tolerating
// an absent file (a .env is an optional convenience, not a requirement).
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load dotenv %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides DB connection fields from the environment, for
// deployments that keep credentials out of config files entirely.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TILEBUILDER_DB_HOST"); v != "" {
		c.DBHost = v
	}
	if v := os.Getenv("TILEBUILDER_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.DBPort = p
		}
	}
	if v := os.Getenv("TILEBUILDER_DB_NAME"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("TILEBUILDER_DB_USER"); v != "" {
		c.DBUser = v
	}
	if v := os.Getenv("TILEBUILDER_DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
}
