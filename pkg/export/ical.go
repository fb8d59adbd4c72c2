package export

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// CalendarEvent is a single all-day entry in an iCalendar feed.
type CalendarEvent struct {
	UID         string
	Date        time.Time
	Summary     string
	Description string
	Category    string
	// AlarmDaysBefore adds one display alarm per entry.
	AlarmDaysBefore []int
}

// Calendar renders RFC 5545 feeds.
type Calendar struct {
	ProdID string
	Name   string
	Now    func() time.Time
}

// ContentType is the MIME type of the rendered output.
func (c *Calendar) ContentType() string {
	return "text/calendar; charset=utf-8"
}

// Render writes every event as a VEVENT with its alarms.
func (c *Calendar) Render(events []CalendarEvent) []byte {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	stamp := now().UTC().Format("20060102T150405Z")

	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, fmt.Sprintf("PRODID:%s", c.ProdID))
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "METHOD:PUBLISH")
	if c.Name != "" {
		writeLine(&b, fmt.Sprintf("X-WR-CALNAME:%s", escapeText(c.Name)))
	}

	for _, ev := range events {
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, fmt.Sprintf("UID:%s", ev.UID))
		writeLine(&b, fmt.Sprintf("DTSTAMP:%s", stamp))
		writeLine(&b, fmt.Sprintf("DTSTART;VALUE=DATE:%s", ev.Date.Format("20060102")))
		writeLine(&b, fmt.Sprintf("DTEND;VALUE=DATE:%s", ev.Date.AddDate(0, 0, 1).Format("20060102")))
		writeLine(&b, fmt.Sprintf("SUMMARY:%s", escapeText(ev.Summary)))
		if ev.Description != "" {
			writeLine(&b, fmt.Sprintf("DESCRIPTION:%s", escapeText(ev.Description)))
		}
		if ev.Category != "" {
			writeLine(&b, fmt.Sprintf("CATEGORIES:%s", escapeText(ev.Category)))
		}
		for _, days := range ev.AlarmDaysBefore {
			writeLine(&b, "BEGIN:VALARM")
			writeLine(&b, "ACTION:DISPLAY")
			writeLine(&b, fmt.Sprintf("TRIGGER:-P%dD", days))
			writeLine(&b, fmt.Sprintf("DESCRIPTION:Reminder: %s", escapeText(ev.Summary)))
			writeLine(&b, "END:VALARM")
		}
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return []byte(b.String())
}

// Content lines longer than 75 octets continue on the next line after CRLF and a space.
const maxLineOctets = 75

func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
