package modeling

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/graph"
)

// Version is an immutable graph snapshot. Rows are only ever inserted.
type Version struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ModelID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_version_model_number,priority:1;column:model_id" json:"model_id"`
	Model         *Model          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModelID;references:ID" json:"-"`
	VersionNumber int             `gorm:"not null;uniqueIndex:idx_version_model_number,priority:2;column:version_number" json:"version_number"`
	Graph         datatypes.JSON  `gorm:"not null;column:graph" json:"graph"`
	NodeCount     int             `gorm:"not null;column:node_count" json:"node_count"`
	EdgeCount     int             `gorm:"not null;column:edge_count" json:"edge_count"`
	Cost          decimal.Decimal `gorm:"type:decimal(12,2);not null;column:cost" json:"cost"`
	AlphaUsed     *float64        `gorm:"column:alpha_used" json:"alpha_used,omitempty"`
	CreatedByID   *uuid.UUID      `gorm:"type:uuid;column:created_by_id" json:"created_by_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (Version) TableName() string { return "model_versions" }

func (v *Version) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// DecodeGraph parses the stored adjacency map.
func (v *Version) DecodeGraph() (graph.Graph, error) {
	return graph.Parse(v.Graph)
}

// NewVersion builds an unsaved version row for g with counts and cost measured now.
func NewVersion(modelID uuid.UUID, number int, g graph.Graph, createdBy *uuid.UUID) (*Version, error) {
	raw, err := g.MarshalJSON()
	if err != nil {
		return nil, err
	}
	stats := graph.Measure(g)
	return &Version{
		ModelID:       modelID,
		VersionNumber: number,
		Graph:         datatypes.JSON(raw),
		NodeCount:     stats.Nodes,
		EdgeCount:     stats.Edges,
		Cost:          stats.Cost,
		CreatedByID:   createdBy,
	}, nil
}
