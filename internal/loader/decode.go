package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"resourcefinda/internal/models"
	"resourcefinda/pkg/geo"
)

// Column names in the science capability directory resource.
const (
	colID           = "_id"
	colName         = "Centre name"
	colAbbreviation = "Abbreviation"
	colOverview     = "Overview"
	colAddress      = "Address"
	colSectors      = "Sectors"
	colLatitude     = "Latitude"
	colLongitude    = "Longitude"
)

// errNotObject marks a row that is not a JSON object. The loader treats it as a malformed
// response rather than a bad row.
var errNotObject = errors.New("record is not a JSON object")

// rowStatus flags what was wrong with a kept row.
type rowStatus int

const rowOK rowStatus = 0

const (
	// rowCoordinatesCleared means the row is kept but its coordinates were unusable.
	rowCoordinatesCleared rowStatus = 1 << iota
	// rowUnnamed means the row is kept with an empty display name.
	rowUnnamed
)

func (s rowStatus) has(flag rowStatus) bool {
	return s&flag != 0
}

type decoder struct {
	validate *validator.Validate
}

func newDecoder() *decoder {
	return &decoder{validate: validator.New()}
}

// decodeRow turns one raw datastore row into a Facility.
func (d *decoder) decodeRow(raw json.RawMessage) (models.Facility, rowStatus, error) {
	var cells map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cells); err != nil || cells == nil {
		return models.Facility{}, rowOK, errNotObject
	}

	facility := models.Facility{
		ID:           intCell(cells[colID]),
		Name:         strings.TrimSpace(textCell(cells[colName])),
		Abbreviation: strings.TrimSpace(textCell(cells[colAbbreviation])),
		Overview:     textCell(cells[colOverview]),
		Address:      textCell(cells[colAddress]),
		Sectors:      textCell(cells[colSectors]),
	}

	var status rowStatus
	lat, latErr := geo.ParseCoordinate(cells[colLatitude])
	lon, lonErr := geo.ParseCoordinate(cells[colLongitude])
	if latErr != nil || lonErr != nil {
		status |= rowCoordinatesCleared
	} else {
		facility.Latitude, facility.Longitude = lat, lon
	}

	if err := d.validate.Struct(facility); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.Facility{}, rowOK, err
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Name":
				status |= rowUnnamed
			case "Latitude", "Longitude":
				facility.Latitude, facility.Longitude = nil, nil
				status |= rowCoordinatesCleared
			default:
				return models.Facility{}, rowOK, fmt.Errorf("field %s failed %s", fe.Field(), fe.Tag())
			}
		}
	}

	return facility, status, nil
}

// textCell reads a text column. Null, missing and non-string cells read as "".
// Numbers are kept in their JSON spelling so that numeric-typed text columns survive.
func textCell(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func intCell(raw json.RawMessage) int {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n
}
