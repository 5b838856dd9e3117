package domain

import (
	"path/filepath"
	"regexp"
	"time"
)

// DateLayout is the layout of the product date property.
const DateLayout = "2006-01-02"

// stampRe matches the OSI SAF time stamp at the end of a file name, e.g.
// "..._202201011200.nc" -> "20220101".
var stampRe = regexp.MustCompile(`_(\d{8})(\d{4})?\.nc4?$`)

// DataDate returns the product date for path. A non-empty override wins.
// Otherwise the date is parsed from the file name stamp; ok is false when
// neither source yields a date.
func DataDate(path, override string) (date string, ok bool) {
	if override != "" {
		return override, true
	}
	m := stampRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", false
	}
	t, err := time.Parse("20060102", m[1])
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}
