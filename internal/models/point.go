package models

import (
	"database/sql/driver"

	"github.com/jackc/pgx/v5/pgtype"
)

// Point is a 2-D coordinate stored in a Postgres point column.
// X holds the longitude and Y the latitude.
type Point struct {
	pgtype.Point
}

// NewPoint builds a valid point from a latitude/longitude pair
func NewPoint(lat, lng float64) Point {
	return Point{pgtype.Point{P: pgtype.Vec2{X: lng, Y: lat}, Valid: true}}
}

// Lat returns the latitude
func (p Point) Lat() float64 { return p.P.Y }

// Lng returns the longitude
func (p Point) Lng() float64 { return p.P.X }

// Scan accepts the text form "(x,y)" as either string or []byte.
func (p *Point) Scan(src any) error {
	if b, ok := src.([]byte); ok {
		src = string(b)
	}
	return p.Point.Scan(src)
}

func (p Point) Value() (driver.Value, error) {
	return p.Point.Value()
}

func (Point) GormDataType() string {
	return "point"
}
