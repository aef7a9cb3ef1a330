package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var weekDigits = regexp.MustCompile(`\d+`)

// ExtractWeek extrait le numéro de semaine d'une cellule, d'un dossier ou d'un fichier
// "Week 52", "W52", "52" et "business_report_week52.xlsx" donnent 52
func ExtractWeek(raw string) (int, error) {
	m := weekDigits.FindString(raw)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekFormat, raw)
	}
	week, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekFormat, raw)
	}
	return week, nil
}

// WeekLabel retourne la forme affichée d'une semaine ("Week 52")
func WeekLabel(week int) string {
	return fmt.Sprintf("Week %d", week)
}

// WeekRange représente une semaine calendaire commençant le samedi
type WeekRange struct {
	start time.Time
	end   time.Time
}

// WeekRangeOf retourne la semaine (samedi → vendredi) contenant d
func WeekRangeOf(d time.Time) WeekRange {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	sinceSaturday := (int(day.Weekday()) - int(time.Saturday) + 7) % 7
	start := day.AddDate(0, 0, -sinceSaturday)
	return WeekRange{
		start: start,
		end:   start.AddDate(0, 0, 6),
	}
}

// Start retourne le samedi de début
func (wr WeekRange) Start() time.Time {
	return wr.start
}

// End retourne le vendredi de fin
func (wr WeekRange) End() time.Time {
	return wr.end
}

// Number retourne le numéro de semaine ISO du début de période
func (wr WeekRange) Number() int {
	_, w := wr.start.ISOWeek()
	return w
}

// Label retourne "2006-01-02 to 2006-01-08"
func (wr WeekRange) Label() string {
	return wr.start.Format("2006-01-02") + " to " + wr.end.Format("2006-01-02")
}
