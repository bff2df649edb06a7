package utils

import "time"

// Age 整年年龄，按月/日修正：忌日未到当年生日则减一
func Age(birth, death time.Time) int {
	age := death.Year() - birth.Year()
	monthDiff := int(death.Month()) - int(birth.Month())
	if monthDiff < 0 || (monthDiff == 0 && death.Day() < birth.Day()) {
		age--
	}
	return age
}
