package market

import "time"

// NSE cash/F&O session boundaries (exchange wall clock).
const (
	SessionOpenHour    = 9
	SessionOpenMinute  = 15
	SessionCloseHour   = 15
	SessionCloseMinute = 30
)

// Exchange is the trading timezone, IST (UTC+05:30). Loaded without
// tzdata so offline runs behave the same everywhere.
var Exchange = time.FixedZone("IST", 5*3600+30*60)

// IsMarketOpen reports whether t falls inside the exchange session:
// weekdays between 09:15 and 15:30 inclusive. Holidays are not modeled;
// days without trades simply produce empty buckets downstream.
func IsMarketOpen(t time.Time) bool {
	lt := t.In(Exchange)
	switch lt.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	mins := lt.Hour()*60 + lt.Minute()
	open := SessionOpenHour*60 + SessionOpenMinute
	close := SessionCloseHour*60 + SessionCloseMinute
	return mins >= open && mins <= close
}

// MarketClose returns the session close instant (15:30 IST) of t's day.
func MarketClose(t time.Time) time.Time {
	lt := t.In(Exchange)
	return time.Date(lt.Year(), lt.Month(), lt.Day(),
		SessionCloseHour, SessionCloseMinute, 0, 0, Exchange)
}

// SameSessionDay reports whether a and b fall on the same exchange-local
// calendar day.
func SameSessionDay(a, b time.Time) bool {
	la, lb := a.In(Exchange), b.In(Exchange)
	ya, ma, da := la.Date()
	yb, mb, db := lb.Date()
	return ya == yb && ma == mb && da == db
}
