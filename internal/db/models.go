package db

import (
	"time"

	"gorm.io/datatypes"
)

// Game stores one score ledger. Players and scores stay JSON documents so the
// row maps one-to-one onto scoring.Game; Version guards concurrent replaces.
type Game struct {
	ID             string         `gorm:"primaryKey;size:64"`
	Name           string         `gorm:"size:80;not null"`
	Status         string         `gorm:"size:16;not null;index"`
	Room1Completed bool           `gorm:"not null;default:false"`
	Room2Completed bool           `gorm:"not null;default:false"`
	Room3Completed bool           `gorm:"not null;default:false"`
	Players        datatypes.JSON `gorm:"not null"`
	Scores         datatypes.JSON `gorm:"not null"`
	Version        int            `gorm:"not null;default:1"`
	CreatedAt      time.Time      `gorm:"not null;index"`
	UpdatedAt      time.Time      `gorm:"not null"`
}
