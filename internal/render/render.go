// Package render performs the literal placeholder substitution used by the
// daily campaign template. It is deliberately not a template language:
// unknown tokens are left untouched.
package render

import (
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/onurcolak/daily-campaign-mailer/internal/domain"
)

const (
	TokenToday     = "{{TODAY}}"
	TokenDate      = "{{DATE}}"
	TokenTimestamp = "{{TIMESTAMP}}"
	TokenName      = "{{NAME}}"

	DateLayout = "January 02, 2006"
)

// Shared is the per-run portion of the rendered content.
type Shared struct {
	HTML      string
	Date      string
	Timestamp int64
}

// LoadTemplate reads the template file. A missing file is reported as
// domain.ErrTemplateMissing.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrTemplateMissing, path)
		}
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(data), nil
}

// TemplateExists reports whether path names a readable regular file.
func TemplateExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// RenderShared substitutes the date and timestamp tokens. The date is taken
// from now in loc.
func RenderShared(tpl string, now time.Time, loc *time.Location) Shared {
	if loc == nil {
		loc = time.UTC
	}
	date := now.In(loc).Format(DateLayout)
	ts := now.Unix()

	r := strings.NewReplacer(
		TokenToday, date,
		TokenDate, date,
		TokenTimestamp, strconv.FormatInt(ts, 10),
	)

	return Shared{
		HTML:      r.Replace(tpl),
		Date:      date,
		Timestamp: ts,
	}
}

// Personalize substitutes {{NAME}}. The name comes from provider data and is
// HTML-escaped before insertion.
func Personalize(sharedHTML, name string) string {
	return strings.ReplaceAll(sharedHTML, TokenName, html.EscapeString(name))
}

// Subject builds "{prefix} - {date}".
func Subject(prefix, date string) string {
	return prefix + " - " + date
}
