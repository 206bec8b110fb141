package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/crewdesk/internal/models"
)

var (
	ErrExportFromDateInvalid = errors.New("export invalid from date")
	ErrExportToDateInvalid   = errors.New("export invalid to date")
	ErrExportRangeInvalid    = errors.New("export invalid range")
	ErrExportStatusInvalid   = errors.New("export invalid status")
)

// ParseLeadExportFilter reads the optional status, from and to query values.
// Either bound may be omitted.
func ParseLeadExportFilter(rawStatus string, rawFrom string, rawTo string, location *time.Location) (LeadExportFilter, error) {
	filter := LeadExportFilter{}

	if strings.TrimSpace(rawStatus) != "" {
		status, ok := models.ParseLeadStatus(rawStatus)
		if !ok {
			return LeadExportFilter{}, ErrExportStatusInvalid
		}
		filter.Status = status
	}

	fromRaw := strings.TrimSpace(rawFrom)
	if fromRaw != "" {
		parsedFrom, err := time.ParseInLocation(models.DateLayout, fromRaw, location)
		if err != nil {
			return LeadExportFilter{}, ErrExportFromDateInvalid
		}
		filter.From = &parsedFrom
	}

	toRaw := strings.TrimSpace(rawTo)
	if toRaw != "" {
		parsedTo, err := time.ParseInLocation(models.DateLayout, toRaw, location)
		if err != nil {
			return LeadExportFilter{}, ErrExportToDateInvalid
		}
		filter.To = &parsedTo
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return LeadExportFilter{}, ErrExportRangeInvalid
	}
	return filter, nil
}
