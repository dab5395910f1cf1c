package domain

import (
	"fmt"
	"strings"
)

// Language filters which course titles end up in the formatted menu.
type Language int

const (
	LangAll Language = iota
	LangEnglish
	LangFinnish
)

// Course is a single dish on the daily menu. Titles come in Finnish and
// English; Properties lists diet codes like "G, L".
type Course struct {
	TitleFi    string
	TitleEn    string
	Properties string
	Category   string
}

// Menu is the set of courses published for one day.
type Menu struct {
	Date    Date
	Courses []Course
}

// Empty reports whether the menu has no courses.
func (m Menu) Empty() bool { return len(m.Courses) == 0 }

// Format renders the menu as a Telegram Markdown message. Desserts get a
// bold label; every other course is listed as-is.
func (m Menu) Format(lang Language) string {
	var b strings.Builder
	for _, c := range m.Courses {
		dessert := c.Category == "Dessert"
		switch lang {
		case LangEnglish:
			if dessert {
				fmt.Fprintf(&b, "\n*Dessert:* %s. %s\n", c.TitleEn, c.Properties)
			} else {
				fmt.Fprintf(&b, "\n%s. %s\n", c.TitleEn, c.Properties)
			}
		case LangFinnish:
			if dessert {
				fmt.Fprintf(&b, "\n*Dessert:* %s. %s\n", c.TitleFi, c.Properties)
			} else {
				fmt.Fprintf(&b, "\n%s. %s\n", c.TitleFi, c.Properties)
			}
		default:
			if dessert {
				fmt.Fprintf(&b, "\n*Dessert:* %s.\n%s. %s\n", c.TitleFi, c.TitleEn, c.Properties)
			} else {
				fmt.Fprintf(&b, "\n%s.\n%s. %s\n", c.TitleFi, c.TitleEn, c.Properties)
			}
		}
	}
	return b.String()
}
