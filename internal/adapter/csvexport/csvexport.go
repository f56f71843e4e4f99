// Package csvexport writes contingency sweep reports as delimited text for
// downstream reporting.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/line-rating-service/internal/sweep"
)

var header = []string{
	"outaged_component",
	"outaged_component_type",
	"affected_line",
	"apparent_load_mva",
	"rated_capacity_mva",
	"actual_capacity_mva",
	"at_risk",
	"overcapacity",
	"load_percent",
}

// WriteSummary writes one row per contingency record. Sentinel rows for
// failed solves carry empty numeric columns.
func WriteSummary(w io.Writer, report *sweep.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range report.Records {
		row := []string{
			rec.OutagedComponent,
			string(rec.ComponentType),
			rec.AffectedLine,
			num(rec.ApparentLoadMVA, rec.SolveFailed),
			num(rec.RatedCapacityMVA, rec.SolveFailed),
			num(rec.ActualCapacity, rec.SolveFailed),
			strconv.FormatBool(rec.AtRisk),
			strconv.FormatBool(rec.Overcapacity),
			num(rec.LoadPercent, rec.SolveFailed),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record for %q: %w", rec.OutagedComponent, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(v float64, failed bool) string {
	if failed {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
