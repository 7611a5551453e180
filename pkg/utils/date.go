package utils

import (
	"log"
	"time"
)

// TaipeiLocation returns the exchange's local time zone.
func TaipeiLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		log.Printf("Failed to load Asia/Taipei location, using fixed UTC+8: %v", err)
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// TimeNowTaipei returns the current time in Asia/Taipei.
func TimeNowTaipei() time.Time {
	return time.Now().In(TaipeiLocation())
}

// TodayTaipei returns midnight of the current exchange day.
func TodayTaipei() time.Time {
	now := TimeNowTaipei()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
