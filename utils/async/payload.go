package async

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/openkcm/tenancy/internal/errs"
)

var (
	ErrParsingPayload   = errors.New("could not parse task payload")
	ErrInvalidRetention = errors.New("invalid retention in task payload")
)

// PurgePayload overrides the configured retention of a single purge run.
type PurgePayload struct {
	Retention string `json:"retention"`
}

func NewPurgePayload(retention time.Duration) PurgePayload {
	return PurgePayload{Retention: retention.String()}
}

func ParsePurgePayload(payload []byte) (PurgePayload, error) {
	var p PurgePayload

	err := json.Unmarshal(payload, &p)
	if err != nil {
		return PurgePayload{}, errs.Wrap(ErrParsingPayload, err)
	}

	return p, nil
}

// RetentionDuration returns the parsed retention. Negative values are rejected.
func (p PurgePayload) RetentionDuration() (time.Duration, error) {
	d, err := time.ParseDuration(p.Retention)
	if err != nil {
		return 0, errs.Wrap(ErrInvalidRetention, err)
	}

	if d < 0 {
		return 0, ErrInvalidRetention
	}

	return d, nil
}

func (p PurgePayload) ToBytes() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errs.Wrap(ErrParsingPayload, err)
	}

	return data, nil
}
