package model

import (
	"fmt"
	"strings"
	"time"
)

// 入出庫の向き
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// ParseDirection は "in"/"out"（大文字小文字は問わない）を Direction に変換する。
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case DirectionIn:
		return DirectionIn, nil
	case DirectionOut:
		return DirectionOut, nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

// 在庫の増減量
func (d Direction) Delta() int64 {
	if d == DirectionIn {
		return 1
	}
	return -1
}

func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// logsテーブルの時刻フォーマット（ローカル時刻）
const TimestampLayout = "2006-01-02 15:04:05"

// 入出庫の履歴（追記のみ）。
// in_time / out_time のどちらか一方だけが入る。
type MovementLog struct {
	LogID     int64   `gorm:"column:log_id;primaryKey;autoIncrement" json:"log_id"`
	ProductID string  `gorm:"column:product_id;type:text;index" json:"product_id"`
	InTime    *string `gorm:"column:in_time;type:text" json:"in_time"`
	OutTime   *string `gorm:"column:out_time;type:text" json:"out_time"`
}

func (MovementLog) TableName() string { return "logs" }

// NewMovementLog は向きに応じて in_time / out_time を埋めた行を作る。
func NewMovementLog(productID string, dir Direction, at time.Time) MovementLog {
	ts := at.Local().Format(TimestampLayout)
	l := MovementLog{ProductID: productID}
	if dir == DirectionIn {
		l.InTime = &ts
	} else {
		l.OutTime = &ts
	}
	return l
}

// 埋まっている列から向きを判定する
func (l MovementLog) Direction() Direction {
	if l.InTime != nil {
		return DirectionIn
	}
	return DirectionOut
}

// 記録時刻（ローカル時刻として解釈）
func (l MovementLog) Timestamp() (time.Time, error) {
	raw := l.OutTime
	if l.InTime != nil {
		raw = l.InTime
	}
	if raw == nil {
		return time.Time{}, fmt.Errorf("log %d has no timestamp", l.LogID)
	}
	return time.ParseInLocation(TimestampLayout, *raw, time.Local)
}
