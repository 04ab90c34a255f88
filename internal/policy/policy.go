package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
	"gopkg.in/yaml.v3"
)

// Policy defines enforcement rules for report summaries.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable policy rules.
type Rules struct {
	MinGrade    string   `yaml:"min_grade,omitempty"`
	MinPassRate *float64 `yaml:"min_pass_rate,omitempty"`
	MaxCritical *int     `yaml:"max_critical,omitempty"`
	MaxFail     *int     `yaml:"max_fail,omitempty"`
}

// Violation is a single policy failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a policy check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

// FileNames are the policy file names searched for, in order.
var FileNames = []string{".prowlerhub-policy.yaml", ".prowlerhub-policy.yml"}

// LoadFromFile reads a policy file. A missing file yields a nil policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}

	p.Rules.MinGrade = strings.ToUpper(strings.TrimSpace(p.Rules.MinGrade))
	if p.Rules.MinGrade != "" && models.GradeRank(p.Rules.MinGrade) == 0 {
		return nil, fmt.Errorf("parse policy: invalid min_grade %q", p.Rules.MinGrade)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in dir and its parents up to
// the filesystem root. An empty dir starts from the working directory.
func FindPolicyFile(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks a security summary against the policy rules.
func (p *Policy) Evaluate(summary models.SecuritySummary) *Result {
	if p == nil {
		return &Result{Pass: true}
	}

	var violations []Violation

	// min_grade
	if p.Rules.MinGrade != "" {
		if models.GradeRank(summary.Grade) < models.GradeRank(p.Rules.MinGrade) {
			violations = append(violations, Violation{
				Rule:    "min_grade",
				Message: fmt.Sprintf("grade %s below minimum %s", summary.Grade, p.Rules.MinGrade),
			})
		}
	}

	// min_pass_rate
	if p.Rules.MinPassRate != nil {
		if summary.PassRate < *p.Rules.MinPassRate {
			violations = append(violations, Violation{
				Rule:    "min_pass_rate",
				Message: fmt.Sprintf("pass rate %.1f%% below minimum %.1f%%", summary.PassRate, *p.Rules.MinPassRate),
			})
		}
	}

	// max_critical
	if p.Rules.MaxCritical != nil {
		if summary.CriticalCount > *p.Rules.MaxCritical {
			violations = append(violations, Violation{
				Rule:    "max_critical",
				Message: fmt.Sprintf("critical issues %d exceeds limit %d", summary.CriticalCount, *p.Rules.MaxCritical),
			})
		}
	}

	// max_fail
	if p.Rules.MaxFail != nil {
		if summary.FailCount > *p.Rules.MaxFail {
			violations = append(violations, Violation{
				Rule:    "max_fail",
				Message: fmt.Sprintf("failed checks %d exceeds limit %d", summary.FailCount, *p.Rules.MaxFail),
			})
		}
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}
