package dbmodels

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

func scanJSON(value any, out any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, out)
	case string:
		return json.Unmarshal([]byte(v), out)
	}
	return errors.Errorf("неподдерживаемый тип jsonb значения: %T", value)
}

type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		j = JSONMap{}
	}
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *JSONMap) Scan(value any) error {
	return scanJSON(value, j)
}

// ItinerarySegment - сегмент запрошенного маршрута (снимок, без связи с поиском)
type ItinerarySegment struct {
	Carrier          string `json:"carrier,omitempty"`
	FlightNumber     string `json:"flight_number,omitempty"`
	DepartureAirport string `json:"departure_airport,omitempty"`
	ArrivalAirport   string `json:"arrival_airport,omitempty"`
	DepartureTime    string `json:"departure_time,omitempty"`
	ArrivalTime      string `json:"arrival_time,omitempty"`
	Cabin            string `json:"cabin,omitempty"`
}

type ItinerarySegments []ItinerarySegment

func (j ItinerarySegments) Value() (driver.Value, error) {
	if j == nil {
		j = ItinerarySegments{}
	}
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *ItinerarySegments) Scan(value any) error {
	return scanJSON(value, j)
}

type StringList []string

func (j StringList) Value() (driver.Value, error) {
	if j == nil {
		j = StringList{}
	}
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *StringList) Scan(value any) error {
	return scanJSON(value, j)
}
