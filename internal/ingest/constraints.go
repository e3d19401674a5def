package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/timetable-engine/pkg/errors"
)

// Known constraint names. Anything else lands in the custom category.
var knownConstraintNames = map[string]bool{
	"NO_TEACHER_CONFLICT":         true,
	"NO_STUDENT_CONFLICT":         true,
	"NO_ROOM_CONFLICT":            true,
	"ROOM_CAPACITY":               true,
	"TEACHER_QUALIFIED":           true,
	"TEACHER_AVAILABILITY":        true,
	"ROOM_FEATURES":               true,
	"GRADE_RESTRICTION":           true,
	"TEACHER_MAX_SECTIONS":        true,
	"BALANCED_SECTIONS":           true,
	"STUDENT_ELECTIVE_PREFERENCE": true,
	"MINIMIZE_GAPS":               true,
	"TEACHER_PREFERENCES":         true,
	"LUNCH_AVAILABILITY":          true,
}

// CategoryCustom buckets constraint names the engine does not recognize.
const CategoryCustom = "custom"

// HardConstraint is a declared hard-constraint tag. The engine's hard
// constraints are fixed; these exist for reporting.
type HardConstraint struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SoftConstraint is a declared soft-constraint tag with weight in [0, 1].
type SoftConstraint struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// ConstraintConfig is the parsed constraint-configuration file.
type ConstraintConfig struct {
	Hard  []HardConstraint  `json:"hard"`
	Soft  []SoftConstraint  `json:"soft"`
	Goals []string          `json:"goals"`
	// Settings preserves every CONFIG key verbatim, including unrecognized ones.
	Settings map[string]string `json:"settings"`

	// Recognized CONFIG keys, 0 when unset.
	PeriodsPerDay int `json:"periods_per_day"`
	DaysPerWeek   int `json:"days_per_week"`
}

// ParseConstraintsFile reads and parses a constraint configuration file.
func ParseConstraintsFile(path string) (*ConstraintConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInput.Code, appErrors.ErrInput.Kind,
			fmt.Sprintf("cannot read constraint file %s", path))
	}
	defer f.Close()
	return ParseConstraints(f)
}

// ParseConstraints parses the line-oriented constraint grammar. Blank lines
// and #-comments are ignored.
func ParseConstraints(r io.Reader) (*ConstraintConfig, error) {
	cfg := &ConstraintConfig{Settings: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "HARD:"):
			if err := cfg.parseHard(strings.TrimPrefix(line, "HARD:"), lineNo); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "SOFT:"):
			if err := cfg.parseSoft(strings.TrimPrefix(line, "SOFT:"), lineNo); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "CONFIG:"):
			if err := cfg.parseConfig(strings.TrimPrefix(line, "CONFIG:"), lineNo); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "GOAL:"):
			cfg.Goals = append(cfg.Goals, strings.TrimSpace(strings.TrimPrefix(line, "GOAL:")))
		default:
			return nil, appErrors.Clone(appErrors.ErrInput,
				fmt.Sprintf("line %d: unrecognized directive %q", lineNo, line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInput.Code, appErrors.ErrInput.Kind, "reading constraint file")
	}
	return cfg, nil
}

func (c *ConstraintConfig) parseHard(rest string, lineNo int) error {
	name, fields := splitDirective(rest)
	if name == "" {
		return appErrors.Clone(appErrors.ErrInput, fmt.Sprintf("line %d: HARD requires a name", lineNo))
	}
	description := ""
	if len(fields) > 0 {
		description = fields[0]
	}
	c.Hard = append(c.Hard, HardConstraint{
		Name:        name,
		Category:    categoryFor(name),
		Description: description,
	})
	return nil
}

func (c *ConstraintConfig) parseSoft(rest string, lineNo int) error {
	name, fields := splitDirective(rest)
	if name == "" {
		return appErrors.Clone(appErrors.ErrInput, fmt.Sprintf("line %d: SOFT requires a name", lineNo))
	}
	soft := SoftConstraint{Name: name, Category: categoryFor(name)}
	for _, field := range fields {
		if strings.HasPrefix(field, "weight=") {
			weight, err := strconv.ParseFloat(strings.TrimPrefix(field, "weight="), 64)
			if err != nil || weight < 0 || weight > 1 {
				return appErrors.Clone(appErrors.ErrInput,
					fmt.Sprintf("line %d: SOFT weight must be a float in [0,1]", lineNo))
			}
			soft.Weight = weight
		} else if soft.Description == "" {
			soft.Description = field
		}
	}
	c.Soft = append(c.Soft, soft)
	return nil
}

func (c *ConstraintConfig) parseConfig(rest string, lineNo int) error {
	parts := strings.SplitN(rest, "=", 2)
	if len(parts) != 2 {
		return appErrors.Clone(appErrors.ErrInput,
			fmt.Sprintf("line %d: CONFIG requires KEY = VALUE", lineNo))
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	c.Settings[key] = value

	switch key {
	case "PERIODS_PER_DAY":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return appErrors.Clone(appErrors.ErrInput,
				fmt.Sprintf("line %d: PERIODS_PER_DAY must be a positive integer", lineNo))
		}
		c.PeriodsPerDay = n
	case "DAYS_PER_WEEK":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return appErrors.Clone(appErrors.ErrInput,
				fmt.Sprintf("line %d: DAYS_PER_WEEK must be a positive integer", lineNo))
		}
		c.DaysPerWeek = n
	}
	return nil
}

// splitDirective separates the constraint name from the remaining |-fields.
func splitDirective(rest string) (string, []string) {
	parts := strings.Split(rest, "|")
	name := strings.TrimSpace(parts[0])
	fields := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		fields = append(fields, strings.TrimSpace(part))
	}
	return name, fields
}

func categoryFor(name string) string {
	if knownConstraintNames[name] {
		return name
	}
	return CategoryCustom
}
