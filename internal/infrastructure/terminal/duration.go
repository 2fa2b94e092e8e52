package terminal

import (
	"time"

	"github.com/hako/durafmt"
)

// HumanDuration spells out whole units up to days: 1266 -> "21 minutes 6 seconds".
func HumanDuration(secs uint64) string {
	return durafmt.Parse(time.Duration(secs) * time.Second).LimitToUnit("days").String()
}
