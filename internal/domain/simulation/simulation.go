package simulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
)

// Simulation is the immutable header of one weight sweep over a single edge.
type Simulation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ModelID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_simulation_model_created,priority:1;column:model_id" json:"model_id"`
	Model         *modeling.Model `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModelID;references:ID" json:"-"`
	VersionID     uuid.UUID       `gorm:"type:uuid;not null;column:version_id" json:"version_id"`
	VersionNumber int             `gorm:"not null;column:version_number" json:"version_number"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;column:user_id" json:"user_id"`
	FromNode      string          `gorm:"not null;column:from_node" json:"from"`
	ToNode        string          `gorm:"not null;column:to_node" json:"to"`
	Origin        string          `gorm:"not null;column:origin" json:"origin"`
	Goal          string          `gorm:"not null;column:goal" json:"goal"`
	Start         float64         `gorm:"not null;column:start_weight" json:"start"`
	Stop          float64         `gorm:"not null;column:stop_weight" json:"stop"`
	Step          float64         `gorm:"not null;column:step" json:"step"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_simulation_model_created,priority:2" json:"created_at"`
}

func (Simulation) TableName() string { return "simulations" }

func (s *Simulation) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Result is one sampled weight. Unreachable goals store Reachable=false, an empty path and a NULL cost.
type Result struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	SimulationID uuid.UUID           `gorm:"type:uuid;not null;index:idx_sim_result_sim_step,priority:1;column:simulation_id" json:"simulation_id"`
	Simulation   *Simulation         `gorm:"constraint:OnDelete:CASCADE;foreignKey:SimulationID;references:ID" json:"-"`
	StepIndex    int                 `gorm:"not null;index:idx_sim_result_sim_step,priority:2;column:step_index" json:"step_index"`
	TestedWeight decimal.Decimal     `gorm:"type:decimal(12,2);not null;column:tested_weight" json:"tested_weight"`
	Path         datatypes.JSON      `gorm:"not null;column:path" json:"path"`
	Reachable    bool                `gorm:"not null;column:reachable" json:"reachable"`
	Cost         decimal.NullDecimal `gorm:"type:decimal(14,4);column:cost" json:"cost"`
	ExecTimeMs   float64             `gorm:"not null;column:exec_time_ms" json:"exec_time_ms"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Result) TableName() string { return "simulation_results" }

func (r *Result) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Best returns the first result with the lowest cost, treating unreachable samples as
// infinitely expensive. With no reachable sample the first result wins; nil for no results.
func Best(results []*Result) *Result {
	var best *Result
	for _, r := range results {
		if r == nil {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		if !r.Reachable || !r.Cost.Valid {
			continue
		}
		if !best.Reachable || !best.Cost.Valid || r.Cost.Decimal.LessThan(best.Cost.Decimal) {
			best = r
		}
	}
	return best
}
