package sanitise

import (
	"errors"
	"html"

	"github.com/microcosm-cc/bluemonday"

	"github.com/openkcm/tenancy/internal/errs"
)

var (
	ErrSanitisation         = errors.New("failed sanitisation")
	ErrUnstableSanitisation = errors.New("sanitisation unstable")
)

const maxCntForStabilisation = 10

// String strips every markup element from value. Sanitising is repeated
// until the output is stable so nested payloads cannot survive a pass.
func String(value string) (string, error) {
	p := bluemonday.StrictPolicy()

	for range maxCntForStabilisation {
		sanitised := p.Sanitize(value)
		if sanitised == value {
			return sanitised, nil
		}

		value = sanitised
	}

	return "", errs.Wrap(ErrSanitisation, ErrUnstableSanitisation)
}

// HasMarkup reports whether value carries markup the strict policy would
// strip. Entity escaping alone does not count as markup.
func HasMarkup(value string) bool {
	sanitised, err := String(value)
	if err != nil {
		return true
	}

	return html.UnescapeString(sanitised) != html.UnescapeString(value)
}
