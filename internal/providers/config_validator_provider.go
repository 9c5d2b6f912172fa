package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"dupescan/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct-tag rules plus the cross-field checks that
// tags cannot express.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	scan := &cv.conf.Scan
	if scan.Percent <= 0 || scan.Percent > 100 {
		return fmt.Errorf("scan.percent must be in (0, 100], got %v", scan.Percent)
	}
	if scan.FilterByFileSize && scan.MaxSizeMB > 0 && scan.MinSizeMB > scan.MaxSizeMB {
		return fmt.Errorf("scan.minSizeMB %d exceeds scan.maxSizeMB %d", scan.MinSizeMB, scan.MaxSizeMB)
	}
	if scan.EnableTimeLimitedScan && scan.TimeLimitSeconds <= 0 {
		return fmt.Errorf("scan.timeLimitSeconds must be positive when time limited scan is enabled")
	}
	for i, ps := range scan.Positions {
		if ps.Type == structures.PositionPercentage && ps.Value > 100 {
			return fmt.Errorf("scan.positions[%d]: percentage above 100", i)
		}
	}
	return nil
}
