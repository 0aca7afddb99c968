// Package model defines core domain types shared across the service.
package model

import (
	"fmt"
	"time"

	"github.com/evhagen/aoiview/internal/geom"
)

type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
}

// String representation matching the wms bbox parameter format
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.X1, b.Y1, b.X2, b.Y2)
}

// FeatureQuery carries the validated parameters of one GetFeatureInfo
// lookup: the target layers, the rendered map window and the clicked pixel.
type FeatureQuery struct {
	Layers []string
	BBox   BBox
	Width  int
	Height int
	X      int
	Y      int
}

// AOI is a stored, normalized area of interest.
type AOI struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	Name      string        `json:"name" gorm:"not null"`
	UserID    string        `json:"-" gorm:"column:user_id;index"`
	Geometry  geom.Geometry `json:"geometry" gorm:"serializer:json;type:text"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (AOI) TableName() string {
	return "aois"
}
