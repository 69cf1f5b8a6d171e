package analytics

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// WritePartnershipXLSX writes the partnership document as a two-sheet
// workbook: a summary sheet and one row per gym.
func WritePartnershipXLSX(doc PartnershipDocument, path string) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addRow(summary, "Generated at", doc.Summary.GeneratedAt.UTC().Format("2006-01-02 15:04"))
	addRow(summary, "Total active users", strconv.Itoa(doc.Summary.TotalActiveUsers))
	addRow(summary, "Total check-ins", strconv.Itoa(doc.Summary.TotalCheckIns))

	insights, err := f.AddSheet("Gyms")
	if err != nil {
		return eris.Wrap(err, "export: add gyms sheet")
	}
	addRow(insights, "Gym", "City", "Province", "Check-ins", "Unique users", "Estimated occupancy %")
	for _, in := range doc.Insights {
		addRow(insights,
			in.GymName,
			in.City,
			in.Province,
			strconv.Itoa(in.Metrics.TotalCheckIns),
			strconv.Itoa(in.Metrics.UniqueUsers),
			strconv.Itoa(in.Metrics.EstimatedOccupancy),
		)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().Value = c
	}
}
