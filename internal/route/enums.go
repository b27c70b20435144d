package route

import (
	"fmt"
	"strings"
	"time"
)

type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

var Seasons = []Season{Spring, Summer, Autumn, Winter}

func ParseSeason(s string) (Season, error) {
	switch Season(strings.ToLower(strings.TrimSpace(s))) {
	case Spring:
		return Spring, nil
	case Summer:
		return Summer, nil
	case Autumn, "fall":
		return Autumn, nil
	case Winter:
		return Winter, nil
	}
	return "", fmt.Errorf("unknown season %q", s)
}

// SeasonOf maps a date to its northern-hemisphere meteorological season.
// It stands in for a weather feed.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}

type Temperature string

const (
	Hot  Temperature = "hot"
	Warm Temperature = "warm"
	Mild Temperature = "mild"
	Cool Temperature = "cool"
	Cold Temperature = "cold"
)

var Temperatures = []Temperature{Hot, Warm, Mild, Cool, Cold}

// ParseTemperature also accepts the client's older climate labels.
func ParseTemperature(s string) (Temperature, error) {
	switch Temperature(strings.ToLower(strings.TrimSpace(s))) {
	case Hot, "hot day":
		return Hot, nil
	case Warm:
		return Warm, nil
	case Mild, "comfortable":
		return Mild, nil
	case Cool:
		return Cool, nil
	case Cold, "cold day":
		return Cold, nil
	}
	return "", fmt.Errorf("unknown temperature %q", s)
}

type Difficulty string

const (
	Easy     Difficulty = "easy"
	Moderate Difficulty = "moderate"
	Hard     Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy, "":
		return Easy, nil
	case Moderate:
		return Moderate, nil
	case Hard:
		return Hard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

type SpotType string

const (
	Cafe      SpotType = "cafe"
	Park      SpotType = "park"
	Bench     SpotType = "bench"
	Viewpoint SpotType = "viewpoint"
	Shrine    SpotType = "shrine"
	Shop      SpotType = "shop"
	Restroom  SpotType = "restroom"
	Other     SpotType = "other"
)

func ParseSpotType(s string) (SpotType, error) {
	switch SpotType(strings.ToLower(strings.TrimSpace(s))) {
	case Cafe:
		return Cafe, nil
	case Park:
		return Park, nil
	case Bench:
		return Bench, nil
	case Viewpoint:
		return Viewpoint, nil
	case Shrine:
		return Shrine, nil
	case Shop:
		return Shop, nil
	case Restroom:
		return Restroom, nil
	case Other:
		return Other, nil
	}
	return "", fmt.Errorf("unknown spot type %q", s)
}

// ParseSeasons parses every entry, failing on the first unknown value.
func ParseSeasons(values []string) ([]Season, error) {
	out := make([]Season, 0, len(values))
	for _, v := range values {
		s, err := ParseSeason(v)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func ParseTemperatures(values []string) ([]Temperature, error) {
	out := make([]Temperature, 0, len(values))
	for _, v := range values {
		t, err := ParseTemperature(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func SeasonStrings(seasons []Season) []string {
	out := make([]string, len(seasons))
	for i, s := range seasons {
		out[i] = string(s)
	}
	return out
}

func TemperatureStrings(temps []Temperature) []string {
	out := make([]string, len(temps))
	for i, t := range temps {
		out[i] = string(t)
	}
	return out
}
