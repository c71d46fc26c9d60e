package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fieldError builds a uniform bad-field error
func fieldError(field string) error {
	return fmt.Errorf("invalid value for field %q", field)
}

// parseUUIDField parses a UUID request field
func parseUUIDField(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fieldError(field)
	}
	return id, nil
}

// parseDateField parses a date request field, accepting RFC 3339 or a
// plain calendar date
func parseDateField(value, field string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fieldError(field)
}

// parseClaimIDParam parses the :claimId path parameter
func parseClaimIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("claimId"))
}

// parseNoticeIDParam parses the :noticeId path parameter
func parseNoticeIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("noticeId"))
}
