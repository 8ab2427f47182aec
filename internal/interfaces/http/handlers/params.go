package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// selection is the parsed (year, sector, language) triple every pipeline
// endpoint works on.
type selection struct {
	Year   int
	Sector observation.Sector
	Lang   geo.Language
}

// parseSelection reads ?year=&sector=&lang= from the request. year is
// required; sector defaults to TOTAL and lang to the configured default.
func parseSelection(c *gin.Context, cfg config.DashboardConfig) (selection, error) {
	rawYear := c.Query("year")
	if rawYear == "" {
		return selection{}, errors.New(errors.ErrCodeInvalidYear, "year parameter is required")
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return selection{}, errors.Newf(errors.ErrCodeInvalidYear, "year %q is not a number", rawYear)
	}

	sector := observation.SectorTotal
	if raw := c.Query("sector"); raw != "" {
		sector, err = observation.ParseSector(raw)
		if err != nil {
			return selection{}, err
		}
	}

	lang, err := geo.ParseLanguage(c.Query("lang"), geo.Language(cfg.DefaultLanguage))
	if err != nil {
		return selection{}, err
	}

	return selection{Year: year, Sector: sector, Lang: lang}, nil
}
