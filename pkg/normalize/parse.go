// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseBRDate parses the POS export date format "DD/MM/YYYY" or
// "DD/MM/YYYY HH:MM:SS" into the given timezone. Two-digit years are
// promoted to 20xx.
func ParseBRDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	datePart := s
	timePart := "00:00:00"
	if i := strings.IndexByte(s, ' '); i >= 0 {
		datePart = s[:i]
		timePart = strings.TrimSpace(s[i+1:])
	}

	fields := strings.Split(datePart, "/")
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("malformed date %q", s)
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day in %q", s)
	}
	month, err := strconv.Atoi(fields[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed month in %q", s)
	}
	yearStr := fields[2]
	if len(yearStr) == 2 {
		yearStr = "20" + yearStr
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed year in %q", s)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date out of range %q", s)
	}

	hour, min, sec := 0, 0, 0
	tf := strings.Split(timePart, ":")
	if len(tf) >= 2 {
		hour, _ = strconv.Atoi(tf[0])
		min, _ = strconv.Atoi(tf[1])
		if len(tf) >= 3 {
			sec, _ = strconv.Atoi(tf[2])
		}
	}

	return time.Date(year, time.Month(month), day, hour, min, sec, 0, loc), nil
}

// ParseBRNumber parses Brazilian-formatted currency amounts:
// "1.234,56" -> 1234.56, "1,5" -> 1.5. An empty string is zero.
func ParseBRNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		// Dots as thousands separators, comma as decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Contains(s, ","):
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q", s)
	}
	return v, nil
}

// CountMachines counts washers and dryers in the POS "Maquinas" column,
// a comma-separated list like "Lavadora 02, Secadora 01".
func CountMachines(machines string) (wash, dry int) {
	if machines == "" {
		return 0, 0
	}
	for _, m := range strings.Split(strings.ToLower(machines), ",") {
		switch {
		case strings.Contains(m, "lavadora"):
			wash++
		case strings.Contains(m, "secadora"):
			dry++
		}
	}
	return wash, dry
}
