package models

import (
	"time"

	"gorm.io/datatypes"
)

// Urgency classifies how quickly an evaluation needs attention. Values are
// stored verbatim in the urgencia column and embedded in notification text.
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICO"
	UrgencyHigh     Urgency = "ALTA"
	UrgencyMedium   Urgency = "MEDIA"
	UrgencyLow      Urgency = "BAIXA"
)

// UrgencyFromScore maps a score in [0,10] to an urgency level. A low score
// signals a critical situation, so severity decreases as the score rises.
// A missing score classifies as low: absence of information is not urgent.
func UrgencyFromScore(score *float64) Urgency {
	if score == nil {
		return UrgencyLow
	}

	switch {
	case *score <= 2:
		return UrgencyCritical
	case *score <= 5:
		return UrgencyHigh
	case *score <= 7:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Severity returns the numeric rank of the level, highest first.
func (u Urgency) Severity() int {
	switch u {
	case UrgencyCritical:
		return 4
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

// ShouldAlert reports whether the level qualifies for an email alert.
// Only the two highest levels do; medium and low stay queue-only.
func (u Urgency) ShouldAlert() bool {
	return u == UrgencyCritical || u == UrgencyHigh
}

// Emoji returns the marker used in formatted notification messages.
func (u Urgency) Emoji() string {
	switch u {
	case UrgencyCritical:
		return "🔴"
	case UrgencyHigh:
		return "🟠"
	case UrgencyMedium:
		return "🟡"
	case UrgencyLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// Title returns the headline used in notifications and email subjects.
func (u Urgency) Title() string {
	switch u {
	case UrgencyCritical:
		return "ALERTA CRÍTICO - AÇÃO IMEDIATA REQUERIDA"
	case UrgencyHigh:
		return "ALERTA ALTA URGÊNCIA - ATENÇÃO NECESSÁRIA"
	case UrgencyMedium:
		return "NOTIFICAÇÃO DE MÉDIA URGÊNCIA"
	case UrgencyLow:
		return "NOTIFICAÇÃO GERAL"
	default:
		return "NOTIFICAÇÃO"
	}
}

// Evaluation is a persisted submission: a free-text description plus a score
// between 0 and 10. Urgency is derived from the score at insert time and
// never recomputed on read.
type Evaluation struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Description string    `gorm:"column:descricao;type:text;not null" json:"descricao"`
	Score       float64   `gorm:"column:nota;not null" json:"nota"`
	Urgency     Urgency   `gorm:"column:urgencia;size:16;not null" json:"urgencia"`
	CreatedAt   time.Time `gorm:"column:data_criacao;index" json:"data_criacao"`
}

// TableName keeps the table name from the original schema.
func (Evaluation) TableName() string {
	return "avaliacoes"
}

// EvaluationStats aggregates all persisted evaluations. Zero-valued when the
// table is empty.
type EvaluationStats struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Report stores the outcome of a scheduled report run. Breakdown holds the
// per-urgency counts as JSON.
type Report struct {
	ID               int64          `gorm:"primaryKey" json:"id"`
	TotalEvaluations int64          `gorm:"column:total_avaliacoes;not null" json:"total_avaliacoes"`
	MeanScore        float64        `gorm:"column:media_notas;not null" json:"media_notas"`
	Breakdown        datatypes.JSON `gorm:"column:distribuicao" json:"distribuicao"`
	GeneratedAt      time.Time      `gorm:"column:data_geracao" json:"data_geracao"`
}

// TableName keeps the table name from the original schema.
func (Report) TableName() string {
	return "relatorios"
}
