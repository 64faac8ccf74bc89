// -- internal/cli/schedule.go --
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/git-atharvb/nexashield-app/pkg/models"
	"github.com/git-atharvb/nexashield-app/pkg/storage/jsondb"
)

// RunScheduleShow prints the current schedule configuration.
func RunScheduleShow(schedulePath string) error {
	file := jsondb.NewScheduleFile(schedulePath)
	cfg, err := file.Load()
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// RunScheduleSet validates and saves the schedule. The stored last_run is
// preserved so re-saving settings cannot re-arm a slot that already fired
// today.
func RunScheduleSet(schedulePath string, enabled bool, scanType, at string) error {
	// Only the self-contained scan types can run unattended: Custom and
	// File need a target argument nobody is around to supply.
	t := models.ScanType(scanType)
	if t != models.ScanQuick && t != models.ScanFull {
		return fmt.Errorf("invalid schedule type: %q (want Quick or Full)", scanType)
	}
	if _, err := time.Parse(models.ClockLayout, at); err != nil {
		return fmt.Errorf("invalid time %q: want HH:mm (24-hour)", at)
	}

	file := jsondb.NewScheduleFile(schedulePath)
	cfg := models.ScheduleConfig{
		Enabled: enabled,
		Type:    t,
		Time:    at,
	}
	if err := file.Save(cfg); err != nil {
		return err
	}
	return RunScheduleShow(schedulePath)
}
